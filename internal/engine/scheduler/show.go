package scheduler

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/keys"
	"go.trai.ch/zerr"
)

// ShowState is the cache state of an element as reported by Inspect.
type ShowState string

const (
	// ShowCached means a successful artifact is cached.
	ShowCached ShowState = "cached"
	// ShowFailed means a failed artifact is cached.
	ShowFailed ShowState = "failed"
	// ShowBuildable means every build dependency is cached.
	ShowBuildable ShowState = "buildable"
	// ShowWaiting means some build dependency must be built first.
	ShowWaiting ShowState = "waiting"
	// ShowInvalid means the element's kind or configuration is invalid.
	ShowInvalid ShowState = "invalid"
)

// ShowEntry describes one selected element.
type ShowEntry struct {
	Name  domain.InternedString
	State ShowState
	Key   domain.CacheKey
	// Err is set for invalid elements.
	Err error
}

// Inspect reports the cache state of the elements selected by opts, in build
// order, without building anything. Only the selection, key and cache
// fields of opts are used. Elements are configured with kinds when it is
// not nil.
func Inspect(ctx context.Context, graph *domain.Graph, kinds ports.KindRegistry, opts Options) ([]ShowEntry, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	if opts.Selection == "" {
		opts.Selection = domain.SelectAll
	}
	if opts.Cache == nil {
		return nil, zerr.Wrap(domain.ErrInvalidConfig, "inspect needs an artifact cache")
	}
	if opts.Keys == nil {
		opts.Keys = keys.New(graph, opts.Strict)
	}

	isCached := cachedFunc(ctx, opts.Cache, opts.Keys)
	selected, err := graph.Select(opts.Targets, opts.Selection, domain.SelectOptions{
		Except:   opts.Except,
		IsCached: isCached,
	})
	if err != nil {
		return nil, err
	}
	isSelected := make(map[domain.InternedString]bool, len(selected))
	for _, name := range selected {
		isSelected[name] = true
	}

	cached := make(map[domain.InternedString]bool)
	var entries []ShowEntry
	for e := range graph.Walk() {
		if !isSelected[e.Name] {
			continue
		}
		key, err := opts.Keys.StrongKey(e.Name)
		if err != nil {
			return nil, err
		}
		a, err := opts.Cache.Lookup(ctx, key)
		if err != nil {
			return nil, err
		}

		entry := ShowEntry{Name: e.Name, Key: key}
		if kinds != nil {
			_, entry.Err = kinds.Instantiate(e)
		}
		switch {
		case entry.Err != nil:
			entry.State = ShowInvalid
		case a != nil && a.Success:
			entry.State = ShowCached
			cached[e.Name] = true
		case a != nil:
			entry.State = ShowFailed
		default:
			entry.State = ShowBuildable
			for _, dep := range graph.BuildClosure(e.Name) {
				if !cached[dep] && !isCached(dep) {
					entry.State = ShowWaiting
					break
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
