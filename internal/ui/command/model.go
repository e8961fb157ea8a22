package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/theme"
)

// CommandMsg is emitted when the user submits a palette line.
type CommandMsg string

// CancelMsg is emitted when the palette is dismissed with esc.
type CancelMsg struct{}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	errMsg string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "rdq 42, type RDQ_OVERDUE, sort createdAt asc, read-all..."
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			return m, func() tea.Msg { return CommandMsg(line) }
		case "esc":
			m.input.Reset()
			m.errMsg = ""
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// SetError shows a parse error under the input.
func (m *Model) SetError(msg string) {
	m.errMsg = msg
}

// Err returns the parse error currently shown, if any.
func (m Model) Err() string {
	return m.errMsg
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	rows := []string{title, m.input.View()}
	if m.errMsg != "" {
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errMsg))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.errMsg = ""
	return m.input.Focus()
}
