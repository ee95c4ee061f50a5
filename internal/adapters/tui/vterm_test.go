package tui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/tui"
)

func TestVterm_WriteFollowsBottom(t *testing.T) {
	t.Parallel()

	vt := tui.NewVterm()
	vt.SetHeight(2)
	_, err := vt.Write([]byte("1\n2\n3\n4\n"))
	require.NoError(t, err)

	assert.Equal(t, vt.MaxOffset(), vt.Offset)
	assert.Positive(t, vt.Offset)
}

func TestVterm_WriteKeepsManualOffset(t *testing.T) {
	t.Parallel()

	vt := tui.NewVterm()
	vt.SetHeight(2)
	_, _ = vt.Write([]byte("1\n2\n3\n4\n"))
	vt.Scroll(tea.KeyMsg{Type: tea.KeyHome})
	require.Zero(t, vt.Offset)

	_, _ = vt.Write([]byte("5\n6\n"))
	assert.Zero(t, vt.Offset)
}

func TestVterm_Scroll(t *testing.T) {
	t.Parallel()

	vt := tui.NewVterm()
	vt.SetHeight(2)
	_, _ = vt.Write([]byte(strings.Repeat("line\n", 10)))
	bottom := vt.MaxOffset()

	vt.Scroll(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, bottom-2, vt.Offset)

	vt.Scroll(tea.KeyMsg{Type: tea.KeyHome})
	vt.Scroll(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Zero(t, vt.Offset, "offset is clamped at the top")

	vt.Scroll(tea.KeyMsg{Type: tea.KeyEnd})
	vt.Scroll(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, bottom, vt.Offset, "offset is clamped at the bottom")
}

func TestVterm_View(t *testing.T) {
	t.Parallel()

	vt := tui.NewVterm()
	vt.SetWidth(20)
	vt.SetHeight(2)
	_, _ = vt.Write([]byte("one\ntwo\nthree"))

	view := vt.View()
	assert.NotContains(t, view, "one")
	assert.Contains(t, view, "two")
	assert.Contains(t, view, "three")
}
