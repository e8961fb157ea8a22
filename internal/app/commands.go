package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/rdq-notify/internal/model"
	notifysync "github.com/nhle/rdq-notify/internal/sync"
	"github.com/nhle/rdq-notify/internal/ui/prefs"
)

// changedMsg is sent when the Synchronizer reports a state change.
type changedMsg struct{}

// opDoneMsg reports the end of a synchronizer operation. Failures are
// already in the error slot; err is only kept for logging.
type opDoneMsg struct {
	op  string
	err error
}

// prefsLoadedMsg is sent after the preference list has been fetched.
type prefsLoadedMsg struct {
	err error
}

// prefsSavedMsg is sent after a batch of preference updates.
type prefsSavedMsg struct {
	saved int
	err   error
}

// waitForChange blocks until the Synchronizer signals a change.
func waitForChange(s *notifysync.Synchronizer) tea.Cmd {
	ch := s.Changes()
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func fetchCmd(s *notifysync.Synchronizer, c model.SearchCriteria) tea.Cmd {
	c = c.Clone()
	return func() tea.Msg {
		return opDoneMsg{op: "fetch", err: s.Fetch(context.Background(), c)}
	}
}

func refreshCmd(s *notifysync.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "refresh", err: s.Refresh(context.Background())}
	}
}

func fetchStatsCmd(s *notifysync.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "stats", err: s.FetchStats(context.Background())}
	}
}

func markReadCmd(s *notifysync.Synchronizer, id int64) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "mark read", err: s.MarkAsRead(context.Background(), id)}
	}
}

func markAllReadCmd(s *notifysync.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "mark all read", err: s.MarkAllAsRead(context.Background())}
	}
}

func deleteCmd(s *notifysync.Synchronizer, id int64) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "delete", err: s.Delete(context.Background(), id)}
	}
}

func fetchPreferencesCmd(pm *notifysync.PreferenceManager) tea.Cmd {
	return func() tea.Msg {
		return prefsLoadedMsg{err: pm.FetchPreferences(context.Background())}
	}
}

// savePreferencesCmd sends each change in turn and stops at the first
// failure, which the PreferenceManager records in its error slot.
func savePreferencesCmd(pm *notifysync.PreferenceManager, changes []prefs.Change) tea.Cmd {
	return func() tea.Msg {
		saved := 0
		for _, ch := range changes {
			if err := pm.UpdatePreference(context.Background(), ch.ID, ch.Update); err != nil {
				return prefsSavedMsg{saved: saved, err: err}
			}
			saved++
		}
		return prefsSavedMsg{saved: saved}
	}
}
