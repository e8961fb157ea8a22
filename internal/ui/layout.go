package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/theme"
)

// Title is shown at the left of the header bar.
const Title = "RDQ Notifications"

// Layout holds the terminal dimensions and renders the frame around the
// active view: a header with the notification counters, the content area,
// and a status bar that doubles as the error banner.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// SyncState is what the header shows about the synchronizer besides the
// counters. Spinner is rendered in front of the counters while a request is
// in flight.
type SyncState struct {
	Loading bool
	Spinner string
	Polling bool
}

// HeaderStatus formats the counters for the right side of the header.
func HeaderStatus(stats model.NotificationStats, st SyncState) string {
	status := fmt.Sprintf("%d unread · %d critical · %d total",
		stats.UnreadCount, stats.CriticalCount, stats.TotalCount)
	if st.Loading && st.Spinner != "" {
		status = st.Spinner + " " + status
	}
	if st.Polling {
		status += " · live"
	}
	return status
}

// RenderHeader renders the title bar with the counters right-aligned.
func (l Layout) RenderHeader(stats model.NotificationStats, st SyncState) string {
	title := theme.HeaderStyle.Render(Title)
	status := theme.HeaderStyle.Align(lipgloss.Right).Render(HeaderStatus(stats, st))

	filler := fill(theme.HeaderStyle, l.Width-lipgloss.Width(title)-lipgloss.Width(status))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, filler, status)
}

// RenderStatusBar renders the bottom bar. An unacknowledged error takes the
// whole bar as a banner; otherwise the notice is shown, or the hints when
// there is no notice.
func (l Layout) RenderStatusBar(errMsg, notice, hints string) string {
	if errMsg != "" {
		return theme.ErrorBannerStyle.Width(l.Width).
			Render("⚠ " + errMsg + "  (e to dismiss)")
	}

	text := hints
	if notice != "" {
		text = notice
	}
	rendered := theme.StatusBarStyle.Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		rendered,
		fill(theme.StatusBarStyle, l.Width-lipgloss.Width(rendered)),
	)
}

// RenderWithFrame stacks the header, content, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill returns width blank cells in the bar's background color. The bar's
// own padding is not applied.
func fill(style lipgloss.Style, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(style.GetBackground()).
		Render("")
}
