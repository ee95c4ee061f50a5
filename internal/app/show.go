package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// ShowOptions configuration for the Show method.
type ShowOptions struct {
	// Deps is the pipeline selection; it defaults to all.
	Deps     string
	Except   []string
	NoStrict bool
}

// Show writes the cache state and key of the selected elements to w.
func (a *App) Show(ctx context.Context, targetNames []string, opts ShowOptions, w io.Writer) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	selection := domain.SelectAll
	if opts.Deps != "" {
		if selection, err = domain.ParsePipelineSelection(opts.Deps); err != nil {
			return err
		}
	}
	cache, err := a.caches.Open(project.Settings.CacheDir, project.Settings.BuildTrees)
	if err != nil {
		return err
	}

	entries, err := scheduler.Inspect(ctx, project.Graph, a.kinds, scheduler.Options{
		Targets:   domain.NewInternedStrings(targetNames),
		Selection: selection,
		Except:    domain.NewInternedStrings(opts.Except),
		Strict:    !opts.NoStrict,
		Cache:     cache,
	})
	if err != nil {
		return err
	}
	return writeShow(w, entries)
}

// writeShow prints one aligned line per entry: name, state and short key.
func writeShow(w io.Writer, entries []scheduler.ShowEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.State, e.Key.Short()); err != nil {
			return err
		}
	}
	return tw.Flush()
}
