// Package linear provides a line-oriented renderer for terminals and CI logs.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/ui/output"
	"go.trai.ch/mason/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer prints element output prefixed with the element name, one line at
// a time, followed by a status line when the element finishes.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu       sync.Mutex
	elements map[string]*elementState
}

type elementState struct {
	name      string
	startTime time.Time
	buf       bytes.Buffer
}

// NewRenderer creates a Renderer using the ANSI profile for CI logs.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	return NewRendererWithProfile(stdout, stderr, output.ColorProfileANSI)
}

// NewRendererWithProfile creates a Renderer whose status lines use the
// profile returned by profileFn.
func NewRendererWithProfile(stdout, stderr io.Writer, profileFn func() termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout:   stdout,
		stderr:   stderr,
		output:   output.NewWithProfile(stderr, profileFn),
		elements: make(map[string]*elementState),
	}
}

// Start does nothing; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial lines of elements still running.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.elements {
		r.flushLocked(e)
	}
	return nil
}

// Wait does nothing; the renderer writes synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the size of the plan.
func (r *Renderer) OnPlanEmit(elements []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning %d element(s) for %s\n", len(elements), strings.Join(targets, ", "))
}

// OnTaskStart prints a start line for the element.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.elements[spanID] = &elementState{name: name, startTime: startTime}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", prefix, r.mark(domain.StatusBuilding))
}

// OnTaskLog prints the complete lines of data and keeps the rest buffered.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.elements[spanID]
	if !ok {
		return
	}
	e.buf.Write(data)

	for {
		idx := bytes.IndexByte(e.buf.Bytes(), '\n')
		if idx < 0 {
			return
		}
		line := e.buf.Next(idx + 1)
		r.printLineLocked(e.name, line)
	}
}

// OnTaskComplete flushes the element's output and prints its outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.elements[spanID]
	if !ok {
		return
	}
	r.flushLocked(e)
	delete(r.elements, spanID)

	duration := endTime.Sub(e.startTime).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", e.name)
	if err != nil {
		_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n", prefix, r.mark(domain.StatusFailed), duration, err)
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s done in %v\n", prefix, r.mark(domain.StatusSucceeded), duration)
}

func (r *Renderer) mark(status domain.ElementStatus) string {
	m := style.ForStatus(status)
	return r.output.String(m.Icon).Foreground(r.output.Color(string(m.Color))).String()
}

// flushLocked prints a trailing partial line. Must be called with r.mu held.
func (r *Renderer) flushLocked(e *elementState) {
	if e.buf.Len() > 0 {
		r.printLineLocked(e.name, e.buf.Bytes())
		e.buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
