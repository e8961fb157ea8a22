package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the notification center.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Notification actions
	MarkRead    key.Binding
	MarkAllRead key.Binding
	Delete      key.Binding
	Refresh     key.Binding

	// Filters
	CycleType      key.Binding
	ToggleRead     key.Binding
	ToggleCritical key.Binding
	ResetFilters   key.Binding

	// Other views
	Preferences key.Binding
	Command     key.Binding
	ClearError  key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "mark all read"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle type"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unread/read/all"),
		),
		ToggleCritical: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "critical/normal/all"),
		),
		ResetFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset filters"),
		),
		Preferences: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "preferences"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		ClearError: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "dismiss error"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.MarkRead, k.MarkAllRead, k.Delete,
		k.Refresh, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.Back, k.Quit},
		{k.MarkRead, k.MarkAllRead, k.Delete, k.Refresh},
		{k.CycleType, k.ToggleRead, k.ToggleCritical, k.ResetFilters},
		{k.Preferences, k.Command, k.ClearError, k.Help},
	}
}
