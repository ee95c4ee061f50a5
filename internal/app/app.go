// Package app implements the application layer for mason.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/mason/internal/adapters/detector"
	"go.trai.ch/mason/internal/adapters/linear"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/adapters/tui"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.trai.ch/mason/internal/ui/output"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// MetricsServer records build metrics and exposes them over HTTP.
type MetricsServer interface {
	ports.Metrics
	Serve(ctx context.Context, l net.Listener) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	kinds        ports.KindRegistry
	stager       ports.Stager
	caches       ports.CacheOpener
	sandboxes    ports.SandboxOpener
	hasher       ports.Hasher
	watcher      ports.Watcher
	metrics      MetricsServer
	stdout       io.Writer
	stderr       io.Writer
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	kinds ports.KindRegistry,
	stager ports.Stager,
	caches ports.CacheOpener,
	sandboxes ports.SandboxOpener,
	hasher ports.Hasher,
	watcher ports.Watcher,
	metrics MetricsServer,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		kinds:        kinds,
		stager:       stager,
		caches:       caches,
		sandboxes:    sandboxes,
		hasher:       hasher,
		watcher:      watcher,
		metrics:      metrics,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects element output and status lines.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTeaOptions adds bubbletea program options for interactive builds.
// This is primarily used for testing to disable input and output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// BuildOptions configuration for the Build method. Zero values fall back to
// the project settings.
type BuildOptions struct {
	Builders      int
	OnError       string
	Deps          string
	Except        []string
	NoStrict      bool
	RetryFailed   bool
	KeepBuildTree bool
	Watch         bool
	MetricsAddr   string
	OutputMode    string
}

// Build builds the specified targets.
func (a *App) Build(ctx context.Context, targetNames []string, opts BuildOptions) error {
	// 1. Load the project
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	// 2. Validate targets
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	// 3. Resolve the output mode
	userMode, err := detector.ParseMode(opts.OutputMode)
	if err != nil {
		return err
	}
	mode := detector.ResolveMode(detector.DetectEnvironment(), userMode)

	sched, err := a.schedulerOptions(project, targetNames, opts)
	if err != nil {
		return err
	}
	if mode == detector.ModeInteractive {
		sched.Flags |= domain.SandboxInteractive
	}

	// 4. Run the metrics endpoint next to the build
	g, ctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	if opts.MetricsAddr != "" {
		var lc net.ListenConfig
		l, err := lc.Listen(ctx, "tcp", opts.MetricsAddr)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to listen for metrics"), "addr", opts.MetricsAddr)
		}
		a.logger.Info(fmt.Sprintf("serving metrics on http://%s/metrics", l.Addr()))
		g.Go(func() error {
			return a.metrics.Serve(serveCtx, l)
		})
	}

	g.Go(func() error {
		defer stopServing()
		if opts.Watch {
			return a.watch(ctx, project, sched, mode)
		}
		return a.runBuild(ctx, project, sched, mode)
	})

	return g.Wait()
}

// runBuild runs one scheduler pass with its own renderer and tracer.
func (a *App) runBuild(
	ctx context.Context,
	project *domain.Project,
	opts scheduler.Options,
	mode detector.OutputMode,
) error {
	// 1. Initialize Renderer
	var renderer ports.Renderer
	if mode == detector.ModeInteractive {
		lipgloss.SetColorProfile(output.ColorProfile())
		teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.stderr)}, a.teaOptions...)
		renderer = tui.NewRenderer(tui.NewModel(), teaOpts...)
	} else {
		renderer = linear.NewRenderer(a.stdout, a.stderr)
	}

	// 2. Initialize Telemetry
	tp := setupOTel(renderer, uuid.NewString())
	defer func() {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer(tp, "mason").WithRenderer(renderer)

	// 3. Initialize Scheduler
	sched := scheduler.NewScheduler(a.stager, tracer, a.metrics, a.logger)

	// 4. Run Renderer and Scheduler concurrently
	g, gctx := errgroup.WithContext(ctx)

	// Renderer Routine
	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	// Scheduler Routine
	var report *scheduler.Report
	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		var err error
		report, err = sched.Run(gctx, project.Graph, a.kinds, opts)
		if err != nil && report != nil {
			return errors.Join(domain.ErrBuildFailed, err)
		}
		return err
	})

	err := g.Wait()
	if report != nil {
		a.logger.Info(fmt.Sprintf("%d built, %d cached, %d failed, %d skipped",
			report.Count(domain.StatusSucceeded),
			report.Count(domain.StatusCached),
			report.Count(domain.StatusFailed),
			report.Count(domain.StatusSkipped),
		))
	}

	if quota := project.Settings.Quota; quota > 0 && ctx.Err() == nil {
		a.prune(ctx, opts.Cache, quota)
	}
	return err
}

// schedulerOptions merges flags over the project settings and opens the
// project's cache and sandbox directories.
func (a *App) schedulerOptions(
	project *domain.Project,
	targetNames []string,
	opts BuildOptions,
) (scheduler.Options, error) {
	settings := project.Settings
	res := scheduler.Options{
		Targets:       domain.NewInternedStrings(targetNames),
		Selection:     domain.SelectPlan,
		Except:        domain.NewInternedStrings(opts.Except),
		Builders:      settings.Builders,
		OnError:       settings.OnError,
		Strict:        !opts.NoStrict,
		RetryFailed:   opts.RetryFailed,
		KeepBuildTree: opts.KeepBuildTree,
		Overlap:       settings.Overlap,
		Warnings:      project.Warnings,
	}

	var err error
	if opts.Builders > 0 {
		res.Builders = opts.Builders
	}
	if opts.OnError != "" {
		if res.OnError, err = domain.ParseSchedulerErrorAction(opts.OnError); err != nil {
			return res, err
		}
	}
	if opts.Deps != "" {
		if res.Selection, err = domain.ParsePipelineSelection(opts.Deps); err != nil {
			return res, err
		}
	}

	if res.Cache, err = a.caches.Open(settings.CacheDir, settings.BuildTrees); err != nil {
		return res, err
	}
	if res.Sandboxes, err = a.sandboxes.Open(filepath.Join(project.Root, domain.DefaultSandboxPath())); err != nil {
		return res, err
	}
	return res, nil
}

func (a *App) prune(ctx context.Context, cache ports.ArtifactCache, quota int64) {
	report, err := cache.Prune(ctx, quota)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("failed to prune artifact cache: %v", err))
		return
	}
	if report.Removed > 0 {
		a.logger.Info(fmt.Sprintf("pruned %d artifacts, freed %d bytes", report.Removed, report.Freed))
	}
}

// PruneOptions configuration for the Prune method.
type PruneOptions struct {
	// Quota overrides the project's cache quota, in bytes.
	Quota int64
}

// Prune evicts least recently used artifacts until the cache fits the quota.
func (a *App) Prune(ctx context.Context, opts PruneOptions) (domain.PruneReport, error) {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return domain.PruneReport{}, zerr.Wrap(err, "failed to load configuration")
	}

	quota := opts.Quota
	if quota == 0 {
		quota = project.Settings.Quota
	}
	if quota <= 0 {
		return domain.PruneReport{}, zerr.Wrap(domain.ErrInvalidConfig, "no cache quota set, pass --quota or set cache.quota")
	}

	cache, err := a.caches.Open(project.Settings.CacheDir, project.Settings.BuildTrees)
	if err != nil {
		return domain.PruneReport{}, err
	}
	report, err := cache.Prune(ctx, quota)
	if err != nil {
		return report, err
	}
	a.logger.Info(fmt.Sprintf("removed %d artifacts, freed %d bytes, %d artifacts (%d bytes) remain",
		report.Removed, report.Freed, report.Remaining, report.TotalBytes))
	return report, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Sandboxes bool
	All       bool
}

// Clean removes the artifact cache, leftover sandboxes, or both.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	project, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error

	// Helper to remove a directory and log the action
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	sandboxes := filepath.Join(project.Root, domain.DefaultSandboxPath())
	switch {
	case options.All:
		remove(project.Settings.CacheDir, "artifact cache")
		remove(filepath.Join(project.Root, domain.DefaultMasonPath()), "project state")
	case options.Sandboxes:
		remove(sandboxes, "sandboxes")
	default:
		remove(project.Settings.CacheDir, "artifact cache")
	}

	return errs
}

// setupOTel registers a tracer provider that reports spans to renderer and
// tags them with the build session.
func setupOTel(renderer ports.Renderer, session string) *sdktrace.TracerProvider {
	tp := telemetry.NewProvider(renderer, sdktrace.WithResource(
		resource.NewSchemaless(attribute.String("mason.session", session)),
	))

	// Register it as the global provider.
	otel.SetTracerProvider(tp)
	return tp
}
