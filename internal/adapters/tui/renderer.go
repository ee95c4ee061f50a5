// Package tui provides the full-screen renderer used in interactive mode.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/mason/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer runs a Model in a bubbletea program and forwards build events to
// it.
type Renderer struct {
	program *tea.Program
	errCh   chan error
}

// NewRenderer creates a Renderer for model.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		errCh:   make(chan error, 1),
	}
}

// Start runs the program in the background.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program has exited. A program killed by its
// context is not an error; the build reports the cancellation.
func (r *Renderer) Wait() error {
	err := <-r.errCh
	if errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrProgramPanic) {
		return nil
	}
	return err
}

// OnPlanEmit implements ports.Renderer.
func (r *Renderer) OnPlanEmit(elements []string, _ map[string][]string, targets []string) {
	r.program.Send(PlanMsg{Elements: elements, Targets: targets})
}

// OnTaskStart implements ports.Renderer.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.program.Send(StartMsg{SpanID: spanID, Name: name, StartTime: startTime})
}

// OnTaskLog implements ports.Renderer.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.program.Send(LogMsg{SpanID: spanID, Data: data})
}

// OnTaskComplete implements ports.Renderer.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.program.Send(CompleteMsg{SpanID: spanID, EndTime: endTime, Err: err})
}
