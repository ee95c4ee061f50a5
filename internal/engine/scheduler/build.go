package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

func (state *runState) build(name domain.InternedString) {
	// The span is ended before the result is sent so that the renderer has
	// seen the element complete when the run returns.
	res := func() elementResult {
		start := time.Now()
		ctx, span := state.s.tracer.Start(state.ctx, name.String(), ports.WithAttribute("mason.element", name.String()))
		defer span.End()

		res := state.buildElement(ctx, span, name)
		res.name = name
		res.duration = time.Since(start)
		if res.err != nil {
			if state.ctx.Err() != nil {
				res.err = zerr.With(zerr.Wrap(domain.ErrBuildTerminated, "build cancelled"), "element", name.String())
			}
			res.status = domain.StatusFailed
			span.RecordError(res.err)
		}
		span.SetAttribute("mason.status", string(res.status))
		return res
	}()

	state.resultsCh <- res
}

// buildElement looks up the element's artifact and builds it on a miss.
func (state *runState) buildElement(ctx context.Context, span ports.Span, name domain.InternedString) elementResult {
	cache := state.opts.Cache

	key, err := state.opts.Keys.StrongKey(name)
	if err != nil {
		return elementResult{err: err}
	}
	span.SetAttribute("mason.key", key.Short())

	a, err := cache.Lookup(ctx, key)
	if err != nil {
		return elementResult{key: key, err: err}
	}
	state.s.metrics.CacheLookup(a != nil)
	if a != nil {
		if a.Success {
			return elementResult{key: key, status: domain.StatusCached}
		}
		if !state.opts.RetryFailed {
			return elementResult{key: key, err: cachedFailure(key)}
		}
	}

	h, err := cache.BeginCommit(ctx, key)
	if err != nil {
		return elementResult{key: key, err: err}
	}
	defer h.Abort()

	// Another worker may have committed the key while we waited. A cached
	// failure is removed under the commit lock, once per key and run.
	a, err = cache.Lookup(ctx, key)
	if err != nil {
		return elementResult{key: key, err: err}
	}
	if a != nil {
		if a.Success {
			return elementResult{key: key, status: domain.StatusCached}
		}
		if !state.claimRetry(key) {
			return elementResult{key: key, err: cachedFailure(key)}
		}
		if err := cache.Remove(ctx, key); err != nil {
			return elementResult{key: key, err: err}
		}
	}

	e, _ := state.graph.Element(name)
	kind := state.instances[name]

	err = withSandbox(ctx, state.opts.Sandboxes, kind.SandboxConfig(), state.s.logger, func(sb ports.Sandbox) error {
		return state.assemble(ctx, span, e, kind, h, withFlags(sb, state.opts.Flags))
	})
	if err != nil {
		return elementResult{key: key, err: err}
	}
	return elementResult{key: key, status: domain.StatusSucceeded}
}

// assemble stages the element's inputs into sb, runs the kind and commits
// the result. Command failures are committed as failed artifacts.
func (state *runState) assemble(
	ctx context.Context,
	span ports.Span,
	e *domain.Element,
	kind ports.Kind,
	h ports.CommitHandle,
	sb ports.Sandbox,
) error {
	plan, err := state.stagingPlan(ctx, kind)
	if err != nil {
		return err
	}
	root := sb.HostPath("/")
	_, err = state.s.stager.Stage(ctx, root, plan, domain.StageOptions{
		Overlap:  state.opts.Overlap,
		Warnings: state.opts.Warnings,
	})
	if err != nil {
		return err
	}
	cfg := sb.Config()
	if err := state.s.stager.StageSources(ctx, root, cfg.WorkDir, e.Sources); err != nil {
		return err
	}

	output, runErr := kind.Assemble(ctx, sb, span, span)
	if runErr != nil && (!errors.Is(runErr, domain.ErrCommandFailed) || ctx.Err() != nil) {
		return runErr
	}

	req := domain.CommitRequest{
		Element:       e.Name.String(),
		Success:       runErr == nil,
		BuildTreeDir:  sb.HostPath(cfg.WorkDir),
		KeepBuildTree: state.opts.KeepBuildTree,
	}
	if runErr == nil && output != "" {
		req.OutputDir = sb.HostPath(output)
	}
	if _, err := h.Commit(req); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// stagingPlan resolves the kind's layout to cached artifacts. Every layout
// entry stages the element together with its runtime closure.
func (state *runState) stagingPlan(ctx context.Context, kind ports.Kind) (domain.StagingPlan, error) {
	var plan domain.StagingPlan
	for _, entry := range kind.Layout() {
		for _, dep := range state.graph.Dependencies([]domain.InternedString{entry.Element}, domain.ScopeRun, true) {
			key, err := state.opts.Keys.StrongKey(dep)
			if err != nil {
				return nil, err
			}
			a, err := state.opts.Cache.Lookup(ctx, key)
			if err != nil {
				return nil, err
			}
			if a == nil || !a.Success {
				err := zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "cannot stage dependency"), "element", dep.String())
				return nil, zerr.With(err, "key", key.Short())
			}
			plan = append(plan, domain.StageEntry{
				Element:     dep,
				SourceDir:   state.opts.Cache.Path(a),
				Destination: entry.Destination,
			})
		}
	}
	return plan, nil
}

func cachedFailure(key domain.CacheKey) error {
	return zerr.With(zerr.Wrap(domain.ErrCachedFailure, "use --retry-failed to build it again"), "key", key.Short())
}

// withSandbox runs fn in a freshly acquired sandbox and closes it afterwards.
// Close failures are logged.
func withSandbox(
	ctx context.Context,
	factory ports.SandboxFactory,
	cfg domain.SandboxConfig,
	logger ports.Logger,
	fn func(ports.Sandbox) error,
) error {
	sb, err := factory.Acquire(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sb.Close(); err != nil {
			logger.Warn(fmt.Sprintf("failed to remove sandbox: %v", err))
		}
	}()
	return fn(sb)
}

// flagged adds flags to every run of a sandbox.
type flagged struct {
	ports.Sandbox
	flags domain.SandboxFlags
}

func withFlags(sb ports.Sandbox, flags domain.SandboxFlags) ports.Sandbox {
	if flags == 0 {
		return sb
	}
	return &flagged{Sandbox: sb, flags: flags}
}

func (f *flagged) Run(
	ctx context.Context, commands []string, flags domain.SandboxFlags, stdout, stderr io.Writer,
) (int, error) {
	return f.Sandbox.Run(ctx, commands, flags|f.flags, stdout, stderr)
}
