package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

type runState struct {
	s      *Scheduler
	ctx    context.Context
	cancel context.CancelFunc
	graph  *domain.Graph
	kinds  ports.KindRegistry
	opts   Options

	// order is the working set in build order.
	order    []domain.InternedString
	selected map[domain.InternedString]bool
	// inDegree counts the unfinished elements of each build closure.
	inDegree map[domain.InternedString]int
	// waiters maps an element to the selected elements whose build closure holds it.
	waiters map[domain.InternedString][]domain.InternedString

	// instances holds the configured kind of every selected element. It is
	// filled before dispatch and only read by workers.
	instances map[domain.InternedString]ports.Kind
	// retried holds the keys whose cached failure was removed in this run.
	retryMu sync.Mutex
	retried map[domain.CacheKey]bool

	ready     []domain.InternedString
	active    int
	stopped   bool
	resultsCh chan elementResult
	results   map[domain.InternedString]elementResult
	errs      error
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	cancel context.CancelFunc,
	graph *domain.Graph,
	kinds ports.KindRegistry,
	selected []domain.InternedString,
	opts Options,
) *runState {
	state := &runState{
		s:         s,
		ctx:       ctx,
		cancel:    cancel,
		graph:     graph,
		kinds:     kinds,
		opts:      opts,
		selected:  make(map[domain.InternedString]bool, len(selected)),
		inDegree:  make(map[domain.InternedString]int, len(selected)),
		waiters:   make(map[domain.InternedString][]domain.InternedString),
		resultsCh: make(chan elementResult, opts.Builders),
		results:   make(map[domain.InternedString]elementResult, len(selected)),
		instances: make(map[domain.InternedString]ports.Kind, len(selected)),
		retried:   make(map[domain.CacheKey]bool),
	}
	for _, name := range selected {
		state.selected[name] = true
	}

	// Only dependencies that are part of this run gate an element.
	for e := range graph.Walk() {
		if !state.selected[e.Name] {
			continue
		}
		state.order = append(state.order, e.Name)
		degree := 0
		for _, dep := range graph.BuildClosure(e.Name) {
			if state.selected[dep] {
				degree++
				state.waiters[dep] = append(state.waiters[dep], e.Name)
			}
		}
		state.inDegree[e.Name] = degree
		if degree == 0 {
			state.ready = append(state.ready, e.Name)
		}
	}
	return state
}

// configure instantiates the kind of every selected element. Elements whose
// kind or configuration is invalid fail before anything is dispatched, under
// the run's error policy.
func (state *runState) configure() {
	for _, name := range state.order {
		if _, done := state.results[name]; done {
			continue
		}
		e, _ := state.graph.Element(name)
		kind, err := state.kinds.Instantiate(e)
		if err != nil {
			// No span starts for the element, so the renderer never sees it.
			state.s.logger.Error(err)
			state.finish(elementResult{name: name, status: domain.StatusFailed, err: err})
			continue
		}
		state.instances[name] = kind
	}
	state.ready = slices.DeleteFunc(state.ready, func(name domain.InternedString) bool {
		_, done := state.results[name]
		return done
	})
}

func (state *runState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		// Workers always report, also when the context is cancelled.
		res := <-state.resultsCh
		state.handleResult(res)
	}

	for _, name := range state.order {
		if _, done := state.results[name]; !done {
			state.results[name] = elementResult{name: name, status: domain.StatusSkipped}
			state.s.updateStatus(name, domain.StatusSkipped)
		}
	}
	return state.errs
}

func (state *runState) isDone() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.halted())
}

// halted reports whether no further element may be dispatched.
func (state *runState) halted() bool {
	return state.stopped || state.ctx.Err() != nil
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.opts.Builders && !state.halted() {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(name, domain.StatusBuilding)
		go state.build(name)
	}
}

func (state *runState) handleResult(res elementResult) {
	state.active--
	state.finish(res)
}

// finish records the outcome of an element and applies it to its waiters.
func (state *runState) finish(res elementResult) {
	state.results[res.name] = res
	state.s.updateStatus(res.name, res.status)
	state.s.metrics.ElementFinished(res.status, res.duration)

	if res.status.Succeeded() {
		for _, w := range state.waiters[res.name] {
			state.inDegree[w]--
			if state.inDegree[w] == 0 {
				// The element stays WAITING until a builder takes it.
				state.ready = append(state.ready, w)
			}
		}
		return
	}

	state.errs = errors.Join(state.errs, &domain.ElementError{Element: res.name.String(), Err: res.err})

	switch state.opts.OnError {
	case domain.OnErrorContinue:
		state.skipWaiters(res.name)
	case domain.OnErrorQuit:
		state.stopped = true
	case domain.OnErrorTerminate:
		state.stopped = true
		state.cancel()
	}
}

// skipWaiters marks every element transitively waiting on name as skipped.
func (state *runState) skipWaiters(name domain.InternedString) {
	for _, w := range state.waiters[name] {
		if _, done := state.results[w]; done {
			continue
		}
		state.results[w] = elementResult{name: w, status: domain.StatusSkipped}
		state.s.updateStatus(w, domain.StatusSkipped)
		state.skipWaiters(w)
	}
}

func (state *runState) report() *Report {
	r := &Report{index: make(map[domain.InternedString]int, len(state.order))}
	for _, name := range state.order {
		res := state.results[name]
		r.index[name] = len(r.Elements)
		r.Elements = append(r.Elements, ElementReport{
			Name:     name,
			Status:   res.status,
			Key:      res.key,
			Duration: res.duration,
			Err:      res.err,
		})
	}
	return r
}

// claimRetry reports whether the cached failure of key may be rebuilt. Each
// key is retried at most once per run.
func (state *runState) claimRetry(key domain.CacheKey) bool {
	state.retryMu.Lock()
	defer state.retryMu.Unlock()
	if !state.opts.RetryFailed || state.retried[key] {
		return false
	}
	state.retried[key] = true
	return true
}
