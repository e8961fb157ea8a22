package notiflist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification title.
func (i Item) Title() string { return i.Notification.Title }

// Description returns the message, or the RDQ reference when the message
// is empty.
func (i Item) Description() string {
	if i.Notification.Message != "" {
		return i.Notification.Message
	}
	return rdqSummary(i.Notification)
}

// ItemDelegate implements list.ItemDelegate for notification rows.
type ItemDelegate struct {
	// now is read when rendering relative times.
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a notification as a title line and a meta line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	now := time.Now()
	if d.now != nil {
		now = d.now()
	}

	fmt.Fprint(w, renderRow(n, index == m.Index(), now))
}

// renderRow builds both lines of a notification row.
func renderRow(n model.Notification, selected bool, now time.Time) string {
	marker := " "
	if !n.Read {
		marker = theme.UnreadMarkerStyle.Render("●")
	}
	critical := " "
	if n.Critical {
		critical = theme.CriticalMarkerStyle.Render("!")
	}

	badge := theme.TypeStyle(n.Type).Render(n.Type.Label())
	first := fmt.Sprintf("%s%s %s %s", marker, critical, badge, n.Title)

	meta := []string{relativeTime(n.CreatedAt, now)}
	if s := rdqSummary(n); s != "" {
		meta = append(meta, s)
	}
	if n.RdqInfo != nil && n.RdqInfo.Status != "" {
		meta = append(meta, theme.RdqStatusStyle(n.RdqInfo.Status).Render(n.RdqInfo.Status))
	}
	second := "   " + theme.MetaStyle.Render(strings.Join(meta, " · "))

	line := first + "\n" + second
	switch {
	case selected:
		return theme.SelectedItemStyle.Render(line)
	case n.Read:
		return theme.ReadItemStyle.Render(line)
	default:
		return theme.ListItemStyle.Render(line)
	}
}

// rdqSummary renders the related RDQ as "RDQ-12 Title", or "" when the
// notification is not tied to one.
func rdqSummary(n model.Notification) string {
	if n.RdqInfo != nil {
		ref := n.RdqInfo.Number
		if ref == "" {
			ref = fmt.Sprintf("#%d", n.RdqInfo.ID)
		}
		if n.RdqInfo.Title != "" {
			return ref + " " + n.RdqInfo.Title
		}
		return ref
	}
	if n.RdqID != nil {
		return fmt.Sprintf("RDQ #%d", *n.RdqID)
	}
	return ""
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("Jan 02")
	}
}
