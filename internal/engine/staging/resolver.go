// Package staging assembles dependency artifacts and sources into a sandbox root.
package staging

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	fsadapter "go.trai.ch/mason/internal/adapters/fs" //nolint:depguard // Tree copy helpers
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxSymlinkHops bounds symlink resolution inside the root.
const maxSymlinkHops = 40

var _ ports.Stager = (*Resolver)(nil)

// Resolver implements ports.Stager on the host file system.
type Resolver struct {
	logger ports.Logger
}

// NewResolver creates a Resolver that reports overlaps and unstaged files to logger.
func NewResolver(logger ports.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// pass is the state of one Stage call.
type pass struct {
	root   string
	opts   domain.StageOptions
	owners map[string]string
	report domain.StagingReport
	// overlapIdx and unstagedIdx index the report records by path.
	overlapIdx  map[string]int
	unstagedIdx map[string]int
}

// Stage copies each entry's tree below root at its destination, in order.
// Under OverlapError the first collision fails the pass; under OverlapWarning
// collisions are recorded and the last writer wins; under OverlapIgnore they
// are overwritten silently. A file is never staged over a non-empty directory.
func (r *Resolver) Stage(
	ctx context.Context, root string, plan domain.StagingPlan, opts domain.StageOptions,
) (domain.StagingReport, error) {
	p := &pass{
		root:        root,
		opts:        opts,
		owners:      make(map[string]string),
		overlapIdx:  make(map[string]int),
		unstagedIdx: make(map[string]int),
	}

	for _, entry := range plan {
		if err := ctx.Err(); err != nil {
			return p.report, err
		}
		if err := p.stageEntry(entry); err != nil {
			return p.report, err
		}
	}

	for _, rec := range p.report.Overlaps {
		r.logger.Warn(fmt.Sprintf("%s: %s is written by %s", domain.WarnOverlaps, rec.Path, strings.Join(rec.Elements, ", ")))
	}
	for _, rec := range p.report.Unstaged {
		r.logger.Warn(fmt.Sprintf("%s: %s from %s would replace a non-empty directory",
			domain.WarnUnstagedFiles, rec.Path, strings.Join(rec.Elements, ", ")))
	}

	if len(p.report.Overlaps) > 0 {
		err := opts.Warnings.Check(domain.WarnOverlaps, "overlapping files staged")
		if err != nil {
			return p.report, zerr.With(err, "paths", overlapPaths(p.report.Overlaps))
		}
	}
	if len(p.report.Unstaged) > 0 {
		err := opts.Warnings.Check(domain.WarnUnstagedFiles, "files were not staged")
		if err != nil {
			return p.report, zerr.With(err, "paths", overlapPaths(p.report.Unstaged))
		}
	}
	return p.report, nil
}

func (p *pass) stageEntry(entry domain.StageEntry) error {
	element := entry.Element.String()
	info, err := os.Stat(entry.SourceDir)
	if err != nil || !info.IsDir() {
		err := zerr.With(zerr.Wrap(domain.ErrUnresolvableDestination, "missing artifact directory"), "element", element)
		return zerr.With(err, "path", entry.SourceDir)
	}
	dest, err := destination(entry.Destination)
	if err != nil {
		return zerr.With(err, "element", element)
	}

	return filepath.WalkDir(entry.SourceDir, func(src string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return zerr.With(zerr.Wrap(walkErr, "failed to walk artifact"), "path", src)
		}
		rel, err := filepath.Rel(entry.SourceDir, src)
		if err != nil {
			return zerr.Wrap(err, "failed to relativize path")
		}
		target := path.Join(dest, filepath.ToSlash(rel))
		if target == "." || d.IsDir() {
			return p.ensureDir(element, target)
		}
		return p.stageFile(element, src, target)
	})
}

// destination cleans a virtual destination into a root relative path.
func destination(dest string) (string, error) {
	rel := path.Clean(strings.TrimLeft(filepath.ToSlash(dest), "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", zerr.With(zerr.Wrap(domain.ErrUnresolvableDestination, "destination escapes the root"), "destination", dest)
	}
	return rel, nil
}

func (p *pass) ensureDir(element, rel string) error {
	host, err := p.resolveDir(rel)
	if err != nil {
		return err
	}
	info, err := os.Lstat(host)
	if err == nil && info.IsDir() {
		return nil
	}
	if err == nil {
		// A file is in the way of a directory. A staged file collides with
		// the directory like two files do.
		if resolved, relErr := filepath.Rel(p.root, host); relErr == nil {
			resolved = filepath.ToSlash(resolved)
			if owner, ok := p.owners[resolved]; ok {
				if err := p.collide(resolved, element, owner); err != nil {
					return err
				}
				delete(p.owners, resolved)
			}
		}
		if rmErr := os.Remove(host); rmErr != nil {
			return zerr.With(zerr.Wrap(rmErr, "failed to replace file with directory"), "path", rel)
		}
	}
	if err := os.MkdirAll(host, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", rel)
	}
	return nil
}

func (p *pass) stageFile(element, src, rel string) error {
	host, err := p.resolve(rel)
	if err != nil {
		return err
	}
	// Owners are keyed by the resolved path so writes through a symlinked
	// directory collide with direct writes.
	if resolved, err := filepath.Rel(p.root, host); err == nil {
		rel = filepath.ToSlash(resolved)
	}

	if existing, err := os.Lstat(host); err == nil {
		if existing.IsDir() {
			empty, err := isEmptyDir(host)
			if err != nil {
				return err
			}
			if !empty {
				p.record(&p.report.Unstaged, p.unstagedIdx, rel, element, "")
				return nil
			}
			if err := os.Remove(host); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to replace empty directory"), "path", rel)
			}
		} else if owner, ok := p.owners[rel]; ok {
			if err := p.collide(rel, element, owner); err != nil {
				return err
			}
		}
	}

	info, err := os.Lstat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat artifact file"), "path", src)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		err = fsadapter.CopySymlink(src, host)
	} else {
		err = fsadapter.CopyFile(src, host, info.Mode().Perm())
	}
	if err != nil {
		return err
	}
	p.owners[rel] = element
	p.report.Files++
	return nil
}

// collide applies the overlap policy to element writing over owner's file at rel.
func (p *pass) collide(rel, element, owner string) error {
	switch p.opts.Overlap {
	case domain.OverlapError:
		p.record(&p.report.Overlaps, p.overlapIdx, rel, element, owner)
		err := zerr.With(zerr.Wrap(domain.ErrStagingOverlap, "staged files overlap"), "path", rel)
		return zerr.With(err, "elements", []string{owner, element})
	case domain.OverlapWarning:
		p.record(&p.report.Overlaps, p.overlapIdx, rel, element, owner)
	case domain.OverlapIgnore:
	}
	return nil
}

// record adds element, and the previous owner if any, to the record for rel.
func (p *pass) record(records *[]domain.OverlapRecord, idx map[string]int, rel, element, owner string) {
	i, ok := idx[rel]
	if !ok {
		i = len(*records)
		idx[rel] = i
		rec := domain.OverlapRecord{Path: "/" + rel, Action: p.opts.Overlap}
		if owner != "" {
			rec.Elements = append(rec.Elements, owner)
		}
		*records = append(*records, rec)
	}
	rec := &(*records)[i]
	for _, e := range rec.Elements {
		if e == element {
			return
		}
	}
	rec.Elements = append(rec.Elements, element)
}

// resolve maps a root relative path to a host path. Symlinks in the parent
// components are followed inside the root: absolute targets are taken
// relative to the root, and no target may leave it.
func (p *pass) resolve(rel string) (string, error) {
	return p.resolvePath(rel, false)
}

// resolveDir is resolve with the last component followed as well.
func (p *pass) resolveDir(rel string) (string, error) {
	return p.resolvePath(rel, true)
}

func (p *pass) resolvePath(rel string, followLast bool) (string, error) {
	if rel == "." {
		return p.root, nil
	}
	parts := strings.Split(rel, "/")
	follow := parts[:len(parts)-1]
	if followLast {
		follow = parts
	}
	resolved := ""
	for _, part := range follow {
		next, err := p.follow(path.Join(resolved, part), rel)
		if err != nil {
			return "", err
		}
		resolved = next
	}
	if !followLast {
		resolved = path.Join(resolved, parts[len(parts)-1])
	}
	return filepath.Join(p.root, filepath.FromSlash(resolved)), nil
}

// follow resolves next while it names a symlink below the root.
func (p *pass) follow(next, rel string) (string, error) {
	for hops := 0; ; hops++ {
		host := filepath.Join(p.root, filepath.FromSlash(next))
		info, err := os.Lstat(host)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			return next, nil
		}
		if hops == maxSymlinkHops {
			return "", zerr.With(zerr.Wrap(domain.ErrUnresolvableDestination, "too many levels of symlinks"), "path", rel)
		}
		link, err := os.Readlink(host)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", next)
		}
		if path.IsAbs(link) {
			next = path.Clean(strings.TrimLeft(link, "/"))
		} else {
			next = path.Join(path.Dir(next), link)
		}
		if next == ".." || strings.HasPrefix(next, "../") {
			return "", zerr.With(zerr.Wrap(domain.ErrUnresolvableDestination, "symlink escapes the root"), "path", rel)
		}
	}
}

func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to read directory"), "path", dir)
	}
	return len(entries) == 0, nil
}

func overlapPaths(records []domain.OverlapRecord) []string {
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}
	return paths
}

// StageSources copies local sources into workDir below root. Collisions are
// overwritten without accounting.
func (r *Resolver) StageSources(ctx context.Context, root, workDir string, sources []domain.Source) error {
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := destination(path.Join(workDir, s.Directory))
		if err != nil {
			return err
		}
		target := filepath.Join(root, filepath.FromSlash(rel))

		info, err := os.Lstat(s.Path)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrUnresolvableDestination, "missing source"), "path", s.Path)
		}
		switch {
		case info.IsDir():
			err = fsadapter.CopyTree(s.Path, target)
		case info.Mode()&os.ModeSymlink != 0:
			err = fsadapter.CopySymlink(s.Path, filepath.Join(target, filepath.Base(s.Path)))
		default:
			err = fsadapter.CopyFile(s.Path, filepath.Join(target, filepath.Base(s.Path)), info.Mode().Perm())
		}
		if err != nil {
			return zerr.With(err, "source", s.Path)
		}
	}
	return nil
}
