// Package style provides shared colours and icons for terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/mason/internal/core/domain"
)

// Palette.
var (
	Clay   = lipgloss.Color("#C2410C")
	Slate  = lipgloss.Color("#667085")
	Stone  = lipgloss.Color("#A8A29E")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#2563EB")
	White  = lipgloss.Color("#FFFFFF")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
	Circle  = "○"
	Skip    = "-"
)

// Mark is the icon and colour used for an element status.
type Mark struct {
	Icon  string
	Color lipgloss.Color
}

var marks = map[domain.ElementStatus]Mark{
	domain.StatusPending:   {Circle, Stone},
	domain.StatusWaiting:   {Circle, Slate},
	domain.StatusBuilding:  {Dot, Blue},
	domain.StatusCached:    {Arrow, Clay},
	domain.StatusSucceeded: {Check, Green},
	domain.StatusFailed:    {Cross, Red},
	domain.StatusSkipped:   {Skip, Yellow},
}

// ForStatus returns the mark of s. Unknown statuses get a slate circle.
func ForStatus(s domain.ElementStatus) Mark {
	if m, ok := marks[s]; ok {
		return m
	}
	return Mark{Circle, Slate}
}
