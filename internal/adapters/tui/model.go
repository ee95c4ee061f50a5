package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/mason/internal/core/domain"
)

const (
	listWidthRatio = 0.3
	logPaneBorder  = 4
)

// ElementNode is one row of the element list.
type ElementNode struct {
	Name   string
	Status domain.ElementStatus
	Term   *Vterm
	Err    error
}

// Model is the bubbletea model of a build: the planned elements on the left,
// the output of the selected one on the right. The selection follows the
// element that started last until the user moves it.
type Model struct {
	Elements []*ElementNode
	Targets  []string

	byName map[string]*ElementNode
	bySpan map[string]*ElementNode

	Selected   int
	ListOffset int
	ListHeight int
	LogWidth   int
	LogHeight  int
	Follow     bool
}

// NewModel creates a Model that follows running elements.
func NewModel() *Model {
	return &Model{
		byName: make(map[string]*ElementNode),
		bySpan: make(map[string]*ElementNode),
		Follow: true,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case PlanMsg:
		m.plan(msg)
	case StartMsg:
		node, ok := m.byName[msg.Name]
		if !ok {
			return m, nil
		}
		node.Status = domain.StatusBuilding
		m.bySpan[msg.SpanID] = node
		if m.Follow {
			m.selectNode(node)
		}
	case LogMsg:
		if node, ok := m.bySpan[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}
	case CompleteMsg:
		node, ok := m.bySpan[msg.SpanID]
		if !ok {
			return m, nil
		}
		delete(m.bySpan, msg.SpanID)
		node.Err = msg.Err
		if msg.Err != nil {
			node.Status = domain.StatusFailed
		} else {
			node.Status = domain.StatusSucceeded
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.Selected > 0 {
			m.Selected--
			m.Follow = false
			m.ensureVisible()
		}
	case "j", "down":
		if m.Selected < len(m.Elements)-1 {
			m.Selected++
			m.Follow = false
			m.ensureVisible()
		}
	case "esc":
		m.Follow = true
		for _, node := range m.Elements {
			if node.Status == domain.StatusBuilding {
				m.selectNode(node)
				break
			}
		}
	default:
		if node := m.SelectedNode(); node != nil {
			node.Term.Scroll(msg)
		}
	}
	return nil
}

// SelectedNode returns the element whose output is shown.
func (m *Model) SelectedNode() *ElementNode {
	if m.Selected >= 0 && m.Selected < len(m.Elements) {
		return m.Elements[m.Selected]
	}
	return nil
}

func (m *Model) plan(msg PlanMsg) {
	m.Elements = make([]*ElementNode, len(msg.Elements))
	m.Targets = msg.Targets
	m.byName = make(map[string]*ElementNode, len(msg.Elements))
	m.bySpan = make(map[string]*ElementNode)
	m.Selected, m.ListOffset = 0, 0

	for i, name := range msg.Elements {
		term := NewVterm()
		if m.LogWidth > 0 && m.LogHeight > 0 {
			term.SetWidth(m.LogWidth)
			term.SetHeight(m.LogHeight)
		}
		node := &ElementNode{Name: name, Status: domain.StatusWaiting, Term: term}
		m.Elements[i] = node
		m.byName[name] = node
	}
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * listWidthRatio)
	m.LogWidth = width - listWidth - logPaneBorder
	m.LogHeight = height - lipgloss.Height(titleStyle.Render("LOGS"))
	m.ListHeight = height - lipgloss.Height(titleStyle.Render("ELEMENTS")+"\n\n")
	m.ensureVisible()

	for _, node := range m.Elements {
		node.Term.SetWidth(m.LogWidth)
		node.Term.SetHeight(m.LogHeight)
	}
}

func (m *Model) selectNode(node *ElementNode) {
	for i, n := range m.Elements {
		if n == node {
			m.Selected = i
			break
		}
	}
	m.ensureVisible()
	node.Term.ScrollToBottom()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.Selected < m.ListOffset {
		m.ListOffset = m.Selected
	} else if m.Selected >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.Selected - m.ListHeight + 1
	}
}
