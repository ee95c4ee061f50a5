package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/mason/internal/ui/style"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Clay).
			Foreground(style.White)

	failedTitleStyle = titleStyle.
				Background(style.Red)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Clay).
			Bold(true)

	listStyle = lipgloss.NewStyle().
			PaddingRight(2)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(style.Slate).
			PaddingLeft(1)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.elementList(), m.logPane())
}

func (m *Model) elementList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ELEMENTS") + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Elements))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		b.WriteString(m.row(i, m.Elements[i]) + "\n")
	}
	return listStyle.Render(b.String())
}

func (m *Model) row(i int, node *ElementNode) string {
	mark := style.ForStatus(node.Status)
	icon := lipgloss.NewStyle().Foreground(mark.Color).Render(mark.Icon)
	if i != m.Selected {
		return "  " + icon + " " + node.Name
	}
	return selectedStyle.Render("> ") + icon + " " + selectedStyle.Render(node.Name)
}

func (m *Model) logPane() string {
	node := m.SelectedNode()
	if node == nil {
		return logStyle.Render(titleStyle.Render("LOGS (waiting)"))
	}

	mode := "following"
	if !m.Follow {
		mode = "manual"
	}
	header := titleStyle.Render("LOGS: " + node.Name + " (" + mode + ")")
	if node.Err != nil {
		header = failedTitleStyle.Render("FAILED: " + node.Name)
	}
	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, node.Term.View()))
}
