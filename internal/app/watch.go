package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/mason/internal/adapters/detector"
	"go.trai.ch/mason/internal/adapters/watcher"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/engine/keys"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// watch builds once and rebuilds whenever files below the project root
// change, until ctx is done. Source changes only invalidate the keys of the
// affected elements; project and element file changes reload the project.
func (a *App) watch(
	ctx context.Context,
	project *domain.Project,
	opts scheduler.Options,
	mode detector.OutputMode,
) error {
	if err := a.watcher.Start(ctx, project.Root); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})
	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	computer := keys.New(project.Graph, opts.Strict)
	opts.Keys = computer
	a.rebuild(ctx, project, opts, mode)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			names, reload := affected(project, paths)
			switch {
			case reload:
				next, err := a.configLoader.Load(project.Root)
				if err != nil {
					a.logger.Error(zerr.Wrap(err, "failed to reload configuration"))
					continue
				}
				project = next
				computer = keys.New(project.Graph, opts.Strict)
				opts.Keys = computer
				opts.Warnings = project.Warnings
			case len(names) > 0:
				if err := a.refreshSources(project, computer, names); err != nil {
					a.logger.Error(err)
					continue
				}
			default:
				continue
			}

			a.logger.Info(fmt.Sprintf("%d files changed, rebuilding", len(paths)))
			a.rebuild(ctx, project, opts, mode)
		}
	}
}

// rebuild runs a build and reports its failure without ending the watch
// session.
func (a *App) rebuild(
	ctx context.Context,
	project *domain.Project,
	opts scheduler.Options,
	mode detector.OutputMode,
) {
	err := a.runBuild(ctx, project, opts, mode)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, domain.ErrBuildFailed):
		a.logger.Warn("build failed, waiting for changes")
	default:
		a.logger.Error(err)
	}
}

// refreshSources rehashes the sources of names and hands the digests to the
// key computer, which invalidates their keys and those of their reverse
// dependencies.
func (a *App) refreshSources(project *domain.Project, computer *keys.Computer, names []domain.InternedString) error {
	for _, name := range names {
		e, ok := project.Graph.Element(name)
		if !ok {
			continue
		}
		digests := make([]string, len(e.Sources))
		for i, src := range e.Sources {
			digest, err := a.hasher.HashTree(src.Path)
			if err != nil {
				return zerr.With(err, "element", name.String())
			}
			digests[i] = digest
		}
		if err := computer.SetSourceDigests(name, digests); err != nil {
			return err
		}
	}
	return nil
}

// affected maps changed paths to the elements whose sources contain them.
// reload is true when a project or element file changed.
func affected(project *domain.Project, paths []string) (names []domain.InternedString, reload bool) {
	seen := make(map[domain.InternedString]bool)
	for _, p := range paths {
		if within(project.Settings.CacheDir, p) || within(filepath.Join(project.Root, domain.MasonDirName), p) {
			continue
		}
		if filepath.Base(p) == domain.ProjectFileName || strings.HasSuffix(p, domain.ElementSuffix) {
			reload = true
			continue
		}
		for e := range project.Graph.Walk() {
			if seen[e.Name] {
				continue
			}
			for _, src := range e.Sources {
				if within(src.Path, p) {
					seen[e.Name] = true
					names = append(names, e.Name)
					break
				}
			}
		}
	}
	return names, reload
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
