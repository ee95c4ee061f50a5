package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called when the scheduler has planned the working set.
	// elements are in build order, deps maps an element to its build closure.
	OnPlanEmit(elements []string, deps map[string][]string, targets []string)

	// OnTaskStart is called when an element build begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when an element build emits output.
	// data may contain partial lines or ANSI sequences.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when an element build finishes.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
