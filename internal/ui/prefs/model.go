package prefs

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/theme"
)

// Change is one preference row to send to the store.
type Change struct {
	ID     int64
	Type   model.NotificationType
	Update model.PreferenceUpdate
}

// SubmitMsg is sent when the form is completed. Changes is empty when
// nothing was toggled.
type SubmitMsg struct {
	Changes []Change
}

// CloseMsg is sent when the form is aborted.
type CloseMsg struct{}

// formBindings holds the values huh writes into. It lives on the heap so
// the pointers stay valid while Model is copied by value.
type formBindings struct {
	enabled []model.NotificationType
	email   []model.NotificationType
}

// Model is the preferences view: one in-app and one email toggle per
// notification type.
type Model struct {
	form   *huh.Form
	bind   *formBindings
	prefs  []model.NotificationPreference
	width  int
	height int
}

// New creates an empty preferences view. Call Load before showing it.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// Load builds the form from the current preference rows.
func (m *Model) Load(prefs []model.NotificationPreference) tea.Cmd {
	m.prefs = prefs
	m.bind = &formBindings{}
	for _, p := range prefs {
		if p.Enabled {
			m.bind.enabled = append(m.bind.enabled, p.NotificationType)
			if p.EmailEnabled {
				m.bind.email = append(m.bind.email, p.NotificationType)
			}
		}
	}
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	inApp := make([]huh.Option[model.NotificationType], 0, len(m.prefs))
	email := make([]huh.Option[model.NotificationType], 0, len(m.prefs))
	for _, p := range m.prefs {
		label := p.NotificationType.Label()
		inApp = append(inApp, huh.NewOption(label, p.NotificationType).Selected(p.Enabled))
		email = append(email, huh.NewOption(label, p.NotificationType).Selected(p.Enabled && p.EmailEnabled))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[model.NotificationType]().
				Title("In-app notifications").
				Description("Types shown in the notification center").
				Options(inApp...).
				Value(&m.bind.enabled),
		),
		huh.NewGroup(
			huh.NewMultiSelect[model.NotificationType]().
				Title("Email notifications").
				Description("Only applies to types enabled in-app").
				Options(email...).
				Value(&m.bind.email),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Update forwards messages to the form and reports completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		changes := Diff(m.prefs, m.bind.enabled, m.bind.email)
		m.form = nil
		return m, func() tea.Msg { return SubmitMsg{Changes: changes} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CloseMsg{} }
	}

	return m, cmd
}

// Diff compares the rows with the selected types and returns one Change per
// row whose flags differ. Email is treated as off for types not enabled.
func Diff(prefs []model.NotificationPreference, enabled, email []model.NotificationType) []Change {
	on := toSet(enabled)
	mail := toSet(email)

	var changes []Change
	for _, p := range prefs {
		wantEnabled := on[p.NotificationType]
		wantEmail := wantEnabled && mail[p.NotificationType]
		haveEmail := p.Enabled && p.EmailEnabled

		var u model.PreferenceUpdate
		if wantEnabled != p.Enabled {
			u.Enabled = model.Bool(wantEnabled)
		}
		if wantEmail != haveEmail && wantEnabled {
			u.EmailEnabled = model.Bool(wantEmail)
		}
		if u.Empty() {
			continue
		}
		changes = append(changes, Change{ID: p.ID, Type: p.NotificationType, Update: u})
	}
	return changes
}

func toSet(types []model.NotificationType) map[model.NotificationType]bool {
	set := make(map[model.NotificationType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// View renders the form inside a panel.
func (m Model) View() string {
	if m.form == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading preferences...")
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Notification preferences")

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View()))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 80 {
		w = 80
	}
	return w
}
