package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorBannerStyle renders the unacknowledged error in the status bar.
var ErrorBannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Dark: "#1A202C", Light: "#F8F9FA"}).
	Background(ColorRed).
	Padding(0, 1)

// PanelStyle wraps full-screen panels such as help and preferences.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// ReadItemStyle dims notifications that have been read.
var ReadItemStyle = lipgloss.NewStyle().
	PaddingLeft(2).
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// MetaStyle renders secondary text like timestamps and RDQ references.
var MetaStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FilterStyle renders active filter chips in the list title.
var FilterStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta).
	Bold(true)

// UnreadMarkerStyle colors the unread dot.
var UnreadMarkerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// CriticalMarkerStyle colors the critical flag.
var CriticalMarkerStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// TypeStyle returns a color-coded badge style for a notification type.
func TypeStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch t {
	case model.TypeRdqOverdue, model.TypeRdqCancelled:
		return base.Foreground(ColorRed)
	case model.TypeRdqDeadlineApproaching, model.TypeSystemMaintenance:
		return base.Foreground(ColorOrange)
	case model.TypeRdqAssigned, model.TypeRdqCreated:
		return base.Foreground(ColorBlue)
	case model.TypeRdqStatusChanged, model.TypeRdqUpdated:
		return base.Foreground(ColorYellow)
	case model.TypeRdqCommented:
		return base.Foreground(ColorMagenta)
	case model.TypeUserWelcome:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// RdqStatusStyle returns a color-coded style for an RDQ status string.
func RdqStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case "PLANIFIE":
		return base.Foreground(ColorBlue)
	case "EN_COURS":
		return base.Foreground(ColorYellow)
	case "TERMINE":
		return base.Foreground(ColorGreen)
	case "ANNULE":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}
