package tui

import "time"

// PlanMsg resets the element list to the planned working set.
type PlanMsg struct {
	Elements []string
	Targets  []string
}

// StartMsg reports that an element build began.
type StartMsg struct {
	SpanID    string
	Name      string
	StartTime time.Time
}

// LogMsg carries a chunk of element output.
type LogMsg struct {
	SpanID string
	Data   []byte
}

// CompleteMsg reports that an element build finished.
type CompleteMsg struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
