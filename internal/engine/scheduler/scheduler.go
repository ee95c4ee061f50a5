// Package scheduler builds the selected elements of a graph in dependency order.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/keys"
	"go.trai.ch/zerr"
)

// Options configure a run.
type Options struct {
	Targets   []domain.InternedString
	Selection domain.PipelineSelection
	Except    []domain.InternedString

	// Builders bounds the number of concurrent element builds.
	Builders int
	OnError  domain.SchedulerErrorAction
	// Strict makes every build edge contribute the dependency's strong key.
	Strict bool
	// RetryFailed rebuilds elements whose failure is cached.
	RetryFailed   bool
	KeepBuildTree bool
	Overlap       domain.OverlapAction
	Warnings      domain.Warnings
	// Flags are added to every sandbox run.
	Flags domain.SandboxFlags

	Cache     ports.ArtifactCache
	Sandboxes ports.SandboxFactory
	// Keys computes cache keys. If nil, a computer is created for the run.
	Keys ports.KeyComputer
}

func (o *Options) applyDefaults() {
	if o.Selection == "" {
		o.Selection = domain.SelectPlan
	}
	if o.Builders <= 0 {
		o.Builders = runtime.NumCPU()
	}
	if o.OnError == "" {
		o.OnError = domain.OnErrorQuit
	}
	if o.Overlap == "" {
		o.Overlap = domain.OverlapWarning
	}
}

// Scheduler manages the build of elements in the dependency graph.
type Scheduler struct {
	stager  ports.Stager
	tracer  ports.Tracer
	metrics ports.Metrics
	logger  ports.Logger

	mu     sync.RWMutex
	status map[domain.InternedString]domain.ElementStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	stager ports.Stager,
	tracer ports.Tracer,
	metrics ports.Metrics,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		stager:  stager,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		status:  make(map[domain.InternedString]domain.ElementStatus),
	}
}

// Status returns the status of name in the current or last run.
func (s *Scheduler) Status(name domain.InternedString) domain.ElementStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.status[name]; ok {
		return st
	}
	return domain.StatusPending
}

func (s *Scheduler) initStatuses(names []domain.InternedString) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.status)
	for _, name := range names {
		s.status[name] = domain.StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status domain.ElementStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

// Run builds the elements selected by opts. The report covers every selected
// element. The returned error joins the failures of all elements, each a
// *domain.ElementError.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	kinds ports.KindRegistry,
	opts Options,
) (*Report, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	if opts.Cache == nil || opts.Sandboxes == nil {
		return nil, zerr.Wrap(domain.ErrInvalidConfig, "scheduler needs an artifact cache and a sandbox factory")
	}
	if opts.Keys == nil {
		opts.Keys = keys.New(graph, opts.Strict)
	}

	selected, err := graph.Select(opts.Targets, opts.Selection, domain.SelectOptions{
		Except:   opts.Except,
		IsCached: cachedFunc(ctx, opts.Cache, opts.Keys),
	})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := s.newRunState(runCtx, cancel, graph, kinds, selected, opts)
	s.emitPlan(ctx, state, opts.Targets)
	s.initStatuses(selected)
	for name, degree := range state.inDegree {
		if degree > 0 {
			s.updateStatus(name, domain.StatusWaiting)
		}
	}
	state.configure()

	errs := state.runExecutionLoop()
	if ctx.Err() != nil {
		errs = errors.Join(errs, ctx.Err())
	}
	return state.report(), errs
}

// emitPlan announces the working set in build order together with the
// selected part of each element's build closure.
func (s *Scheduler) emitPlan(ctx context.Context, state *runState, targets []domain.InternedString) {
	elements := make([]string, 0, len(state.order))
	deps := make(map[string][]string, len(state.order))
	for _, name := range state.order {
		elements = append(elements, name.String())
		var closure []string
		for _, dep := range state.graph.BuildClosure(name) {
			if state.selected[dep] {
				closure = append(closure, dep.String())
			}
		}
		deps[name.String()] = closure
	}
	s.tracer.EmitPlan(ctx, elements, deps, domain.Strings(targets))
}

// cachedFunc reports whether the successful artifact of an element is cached.
// Lookup failures count as not cached.
func cachedFunc(ctx context.Context, cache ports.ArtifactCache, kc ports.KeyComputer) func(domain.InternedString) bool {
	return func(name domain.InternedString) bool {
		key, err := kc.StrongKey(name)
		if err != nil {
			return false
		}
		a, err := cache.Lookup(ctx, key)
		return err == nil && a != nil && a.Success
	}
}

// elementResult is what a worker reports for one element.
type elementResult struct {
	name     domain.InternedString
	status   domain.ElementStatus
	key      domain.CacheKey
	duration time.Duration
	err      error
}
