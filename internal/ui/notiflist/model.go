package notiflist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/model"
	notifysync "github.com/nhle/rdq-notify/internal/sync"
	"github.com/nhle/rdq-notify/internal/theme"
)

// Model is the notification list view. It renders whatever Snapshot it
// was last given; actions are handled by the caller.
type Model struct {
	list     list.Model
	criteria model.SearchCriteria
	cursor   model.Cursor
	loaded   bool
	width    int
	height   int
}

// New creates a list view. now is used for relative timestamps; nil means
// time.Now.
func New(width, height int, now func() time.Time) Model {
	l := list.New([]list.Item{}, ItemDelegate{now: now}, width, height)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	m := Model{
		list:     l,
		criteria: model.DefaultCriteria(),
		width:    width,
		height:   height,
	}
	m.updateTitle()
	return m
}

// SetSnapshot replaces the displayed window with the synchronizer's state,
// keeping the selection on the same notification when it is still present.
func (m *Model) SetSnapshot(snap notifysync.Snapshot) tea.Cmd {
	var selectedID int64
	if n, ok := m.Selected(); ok {
		selectedID = n.ID
	}

	items := make([]list.Item, len(snap.Notifications))
	index := 0
	for i, n := range snap.Notifications {
		items[i] = Item{Notification: n}
		if n.ID == selectedID {
			index = i
		}
	}

	m.criteria = snap.Criteria
	m.cursor = snap.Cursor
	m.loaded = m.loaded || snap.State != notifysync.StateIdle
	m.updateTitle()

	cmd := m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(index)
	}
	return cmd
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Update forwards navigation keys to the underlying list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, or an empty-state message.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when the window is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.loaded:
		return style.Render("Loading notifications...")
	case Describe(m.criteria) != "all":
		return style.Render("No matching notifications.\nPress x to reset the filters.")
	default:
		return style.Render("You're all caught up.")
	}
}

func (m *Model) updateTitle() {
	pages := m.cursor.TotalPages
	if pages == 0 {
		pages = 1
	}
	m.list.Title = fmt.Sprintf("Notifications  %s  page %d/%d",
		theme.FilterStyle.Render(Describe(m.criteria)), m.cursor.CurrentPage+1, pages)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
