package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/keys"
	"github.com/nhle/rdq-notify/internal/theme"
)

// legend explains the markers used in the notification list.
const legend = "● unread   ! critical   dimmed rows are read"

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Keyboard Shortcuts")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.help.View(m.keys),
		"",
		theme.HelpStyle.Render(legend),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
