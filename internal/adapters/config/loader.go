// Package config provides the configuration loader for mason.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SourceKindLocal is the only supported source kind.
const SourceKindLocal = "local"

// VarProjectName is the variable every element receives with the project name.
const VarProjectName = "project-name"

var (
	validProjectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	validElementNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_./+-]+$`)
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using YAML files.
type Loader struct {
	Logger ports.Logger
	Hasher ports.Hasher
}

// NewLoader creates a new Loader. Sources are digested with hasher.
func NewLoader(logger ports.Logger, hasher ports.Hasher) *Loader {
	return &Loader{Logger: logger, Hasher: hasher}
}

// DiscoverRoot walks up from cwd to the first directory containing mason.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "cwd", cwd)
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, domain.ProjectFileName)); err == nil {
			return currentDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no project file above the working directory"), "cwd", cwd)
		}
		currentDir = parentDir
	}
}

// Load implements ports.ConfigLoader.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}
	projectPath := filepath.Join(root, domain.ProjectFileName)

	var pf Projectfile
	if err := readAndUnmarshalYAML(projectPath, &pf); err != nil {
		return nil, err
	}
	project, err := buildProject(root, &pf)
	if err != nil {
		return nil, zerr.With(err, "file", projectPath)
	}
	project.Files = append(project.Files, projectPath)

	elementDir := filepath.Join(root, pf.ElementPath)
	if pf.ElementPath == "" {
		elementDir = filepath.Join(root, domain.DefaultElementPath)
	}
	files, err := findElementFiles(elementDir)
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph()
	declared := make(map[domain.InternedString][]DependencyDTO)
	for _, file := range files {
		e, deps, err := l.loadElement(project, elementDir, file)
		if err != nil {
			return nil, zerr.With(err, "file", file)
		}
		if err := g.AddElement(e); err != nil {
			return nil, err
		}
		declared[e.Name] = deps
		project.Files = append(project.Files, file)
	}

	for _, name := range g.Names() {
		for _, dep := range declared[name] {
			typ, err := domain.ParseDependencyType(dep.Type)
			if err != nil {
				return nil, zerr.With(err, "element", name.String())
			}
			if err := g.AddEdge(name, domain.NewInternedString(dep.Filename), typ, dep.Strict); err != nil {
				return nil, err
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	project.Graph = g
	return project, nil
}

func buildProject(root string, pf *Projectfile) (*domain.Project, error) {
	if !validProjectNameRegex.MatchString(pf.Name) {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid project name"), "name", pf.Name)
	}

	warnings, err := domain.ParseWarnings(pf.FatalWarnings)
	if err != nil {
		return nil, err
	}

	settings := domain.Settings{
		Builders: pf.Scheduler.Builders,
		CacheDir: filepath.Join(root, domain.DefaultCachePath()),
		Quota:    pf.Cache.Quota,
	}
	if settings.Builders <= 0 {
		settings.Builders = runtime.NumCPU()
	}
	if pf.Cache.Directory != "" {
		settings.CacheDir = pf.Cache.Directory
		if !filepath.IsAbs(settings.CacheDir) {
			settings.CacheDir = filepath.Join(root, settings.CacheDir)
		}
	}
	if settings.Quota < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "negative cache quota"), "quota", settings.Quota)
	}
	if settings.OnError, err = domain.ParseSchedulerErrorAction(orDefault(pf.Scheduler.OnError, "quit")); err != nil {
		return nil, err
	}
	if settings.BuildTrees, err = domain.ParseCacheBuildTrees(orDefault(pf.Cache.BuildTrees, "auto")); err != nil {
		return nil, err
	}
	if settings.Overlap, err = domain.ParseOverlapAction(orDefault(pf.Staging.Overlap, "warning")); err != nil {
		return nil, err
	}

	vars := make(map[string]string, len(pf.Variables))
	for k, v := range pf.Variables {
		vars[k] = v
	}

	return &domain.Project{
		Root:      root,
		Name:      pf.Name,
		Variables: vars,
		Warnings:  warnings,
		Settings:  settings,
	}, nil
}

func (l *Loader) loadElement(
	project *domain.Project, elementDir, file string,
) (*domain.Element, []DependencyDTO, error) {
	rel, err := filepath.Rel(elementDir, file)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to relativize element file")
	}
	name := filepath.ToSlash(rel)
	if err := l.checkName(project.Warnings, name); err != nil {
		return nil, nil, err
	}

	var dto ElementDTO
	if err := readAndUnmarshalYAML(file, &dto); err != nil {
		return nil, nil, err
	}
	if dto.Kind == "" {
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "missing kind"), "element", name)
	}

	deps, err := l.collectDependencies(project.Warnings, name, &dto)
	if err != nil {
		return nil, nil, err
	}

	vars := make(map[string]string, len(project.Variables)+len(dto.Variables)+1)
	for k, v := range project.Variables {
		vars[k] = v
	}
	for k, v := range dto.Variables {
		vars[k] = v
	}
	vars[VarProjectName] = project.Name

	e := &domain.Element{
		Name:      domain.NewInternedString(name),
		Kind:      dto.Kind,
		Config:    domain.Node(dto.Config),
		Variables: vars,
		File:      file,
	}
	if e.Config == nil {
		e.Config = domain.Node{}
	}

	for i, s := range dto.Sources {
		src, err := l.loadSource(project, name, s)
		if err != nil {
			return nil, nil, zerr.With(err, "source", i)
		}
		e.Sources = append(e.Sources, src)
	}
	return e, deps, nil
}

func (l *Loader) collectDependencies(warnings domain.Warnings, name string, dto *ElementDTO) ([]DependencyDTO, error) {
	groups := []struct {
		deps  []DependencyDTO
		typ   domain.DependencyType
		fixed bool
	}{
		{dto.Depends, domain.DepAll, false},
		{dto.BuildDepends, domain.DepBuild, true},
		{dto.RuntimeDepends, domain.DepRun, true},
	}

	var res []DependencyDTO
	for _, g := range groups {
		for _, d := range g.deps {
			switch {
			case d.Type == "":
				d.Type = string(g.typ)
			case g.fixed && d.Type != string(g.typ):
				err := zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "conflicting dependency type"), "element", name)
				return nil, zerr.With(err, "dependency", d.Filename)
			}
			if !strings.HasSuffix(d.Filename, domain.ElementSuffix) {
				msg := fmt.Sprintf("dependency %q of %s does not end in %s", d.Filename, name, domain.ElementSuffix)
				if err := l.warn(warnings, domain.WarnBadElementSuffix, msg); err != nil {
					return nil, zerr.With(err, "dependency", d.Filename)
				}
			}
			res = append(res, d)
		}
	}
	return res, nil
}

func (l *Loader) checkName(warnings domain.Warnings, name string) error {
	if validElementNameRegex.MatchString(name) {
		return nil
	}
	err := l.warn(warnings, domain.WarnBadCharactersInName, fmt.Sprintf("element name %q contains invalid characters", name))
	if err != nil {
		return zerr.With(err, "element", name)
	}
	return nil
}

func (l *Loader) loadSource(project *domain.Project, name string, s SourceDTO) (domain.Source, error) {
	kind := orDefault(s.Kind, SourceKindLocal)
	if kind != SourceKindLocal {
		return domain.Source{}, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported source kind"), "kind", kind)
	}
	if s.Path == "" {
		return domain.Source{}, zerr.Wrap(domain.ErrInvalidConfig, "local source without path")
	}

	path := filepath.Join(project.Root, filepath.FromSlash(s.Path))
	if rel, err := filepath.Rel(project.Root, path); err != nil || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return domain.Source{}, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "source outside the project"), "path", s.Path)
	}

	digest, err := l.Hasher.HashTree(path)
	if err != nil {
		return domain.Source{}, err
	}
	if s.Ref != "" && s.Ref != digest {
		msg := fmt.Sprintf("source %s of %s is at %s, expected ref %s", s.Path, name, digest, s.Ref)
		if err := l.warn(project.Warnings, domain.WarnRefNotInTrack, msg); err != nil {
			return domain.Source{}, zerr.With(err, "path", s.Path)
		}
	}

	return domain.Source{
		Kind:      kind,
		Path:      path,
		Directory: orDefault(s.Directory, "."),
		Ref:       s.Ref,
		Digest:    digest,
	}, nil
}

// warn logs a warning, or returns its fatal error when promoted.
func (l *Loader) warn(warnings domain.Warnings, w domain.CoreWarning, msg string) error {
	if err := warnings.Check(w, msg); err != nil {
		return err
	}
	l.Logger.Warn(fmt.Sprintf("%s: %s", w, msg))
	return nil
}

// findElementFiles returns the element files below dir in sorted order.
func findElementFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), domain.ElementSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", dir)
	}
	slices.Sort(files)
	return files, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// readAndUnmarshalYAML reads a YAML file and decodes it strictly into target.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered or walked by the loader
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if parseErr := dec.Decode(target); parseErr != nil {
		if errors.Is(parseErr, domain.ErrInvalidConfig) {
			return zerr.With(parseErr, "path", configPath)
		}
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error()), "path", configPath)
	}
	return nil
}
