package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/midterm"
)

// Vterm keeps the terminal state of one element's output and a scroll window
// over it.
type Vterm struct {
	mu      sync.Mutex
	vt      *midterm.Terminal
	viewBuf bytes.Buffer

	Offset int
	Height int
	Width  int
}

// NewVterm creates an empty Vterm.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal()}
}

// Write feeds p to the terminal. A view scrolled to the bottom follows the
// output.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if follow {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetHeight sets the number of visible rows.
func (v *Vterm) SetHeight(h int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	v.Height = max(h, 1)
	if follow {
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

// SetWidth sets the number of columns output wraps at.
func (v *Vterm) SetWidth(w int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Width = max(w, 1)
	v.vt.ResizeX(v.Width)
}

// UsedHeight returns the number of rows written so far.
func (v *Vterm) UsedHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// ScrollToBottom moves the window to the last rows.
func (v *Vterm) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Offset = v.maxOffset()
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.viewBuf.Reset()
	for i := range v.Height {
		row := v.Offset + i
		if row >= v.vt.UsedHeight() {
			break
		}
		if i > 0 {
			_ = v.viewBuf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.viewBuf, row)
	}
	return v.viewBuf.String()
}

// Scroll handles the scroll keys.
func (v *Vterm) Scroll(msg tea.KeyMsg) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch msg.String() {
	case "pgup", "ctrl+u":
		v.Offset -= v.Height
	case "pgdown", "ctrl+d":
		v.Offset += v.Height
	case "home", "g":
		v.Offset = 0
	case "end", "G":
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

func (v *Vterm) clamp() {
	v.Offset = min(max(v.Offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
