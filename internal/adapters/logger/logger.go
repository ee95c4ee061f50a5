// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Logger = (*Logger)(nil)
	_ annotated    = (*zerr.Error)(nil)
)

// annotated is an error carrying its own message and metadata, like *zerr.Error.
type annotated interface {
	error
	Message() string
	Metadata() map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a Logger writing pretty output to os.Stderr.
func New() *Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput updates the output destination, keeping the current mode.
// A nil w means os.Stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// rebuild must be called with mu held or before the logger is shared.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err. In JSON mode the zerr metadata of the whole chain becomes
// structured fields; otherwise the chain is printed as an indented cause list.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err, 0)))
}

// errorEntry is one message of an error chain.
type errorEntry struct {
	depth    int
	message  string
	metadata map[string]any
}

// collectErrorEntries flattens err into entries. Joined errors each start a
// new chain at depth; zerr wrappers without a message lend their metadata to
// the next entry.
func collectErrorEntries(err error, depth int) []errorEntry {
	var entries []errorEntry
	pending := map[string]any{}

	for current := err; current != nil; {
		if joined, ok := current.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				entries = append(entries, collectErrorEntries(e, depth)...)
			}
			return entries
		}

		z, ok := current.(annotated)
		if !ok {
			entries = append(entries, errorEntry{depth: depth, message: current.Error(), metadata: pending})
			return entries
		}

		for k, v := range z.Metadata() {
			pending[k] = v
		}
		if z.Message() != "" {
			entries = append(entries, errorEntry{depth: depth, message: z.Message(), metadata: pending})
			pending = map[string]any{}
			depth++
		}
		current = errors.Unwrap(current)
	}
	return entries
}

// formatErrorEntries renders entries as "Error:" headlines followed by their causes.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string
	for _, e := range entries {
		msg := e.message
		if meta := formatMetadata(e.metadata); meta != "" {
			msg += " " + meta
		}
		parts := strings.Split(msg, "\n")

		if e.depth == 0 {
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, "Error: "+parts[0])
			for _, p := range parts[1:] {
				lines = append(lines, "       "+p)
			}
			continue
		}

		indent := strings.Repeat("  ", e.depth)
		lines = append(lines, indent+"→ "+parts[0])
		for _, p := range parts[1:] {
			lines = append(lines, indent+"  "+p)
		}
	}
	return strings.Join(lines, "\n")
}

func formatMetadata(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return "(" + strings.Join(parts, " ") + ")"
}
