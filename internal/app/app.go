package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/keys"
	"github.com/nhle/rdq-notify/internal/model"
	notifysync "github.com/nhle/rdq-notify/internal/sync"
	"github.com/nhle/rdq-notify/internal/theme"
	"github.com/nhle/rdq-notify/internal/ui"
	"github.com/nhle/rdq-notify/internal/ui/command"
	helpview "github.com/nhle/rdq-notify/internal/ui/help"
	"github.com/nhle/rdq-notify/internal/ui/notiflist"
	"github.com/nhle/rdq-notify/internal/ui/prefs"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewHelp
	ViewCommand
	ViewPreferences
)

// Options configures the notification center.
type Options struct {
	PollInterval time.Duration
	PageSize     int
	Logger       *zap.Logger

	// Now is the clock used for relative timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Model is the root Bubble Tea model. It owns the Synchronizer: polling
// starts in Init and the Synchronizer is closed when the user quits.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap
	sync        *notifysync.Synchronizer
	prefs       *notifysync.PreferenceManager
	logger      *zap.Logger

	list        notiflist.Model
	prefsView   prefs.Model
	helpView    helpview.Model
	commandView command.Model
	spinner     spinner.Model

	snap     notifysync.Snapshot
	criteria model.SearchCriteria
	interval time.Duration
	notice   string
	ready    bool
}

// New creates the root model over a Synchronizer and PreferenceManager.
func New(s *notifysync.Synchronizer, pm *notifysync.PreferenceManager, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	criteria := model.DefaultCriteria()
	if opts.PageSize > 0 {
		criteria.Size = opts.PageSize
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.MetaStyle

	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewList,
		keys:        k,
		sync:        s,
		prefs:       pm,
		logger:      opts.Logger,
		list:        notiflist.New(80, 22, opts.Now),
		prefsView:   prefs.New(80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
		spinner:     sp,
		snap:        s.Snapshot(),
		criteria:    criteria,
		interval:    opts.PollInterval,
	}
}

// Init starts background polling and issues the first fetch.
func (m Model) Init() tea.Cmd {
	m.sync.StartPolling(m.interval, m.criteria)
	return tea.Batch(
		m.spinner.Tick,
		waitForChange(m.sync),
		fetchCmd(m.sync, m.criteria),
		fetchStatsCmd(m.sync),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.prefsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m.updateActiveView(msg)

	case changedMsg:
		m.snap = m.sync.Snapshot()
		cmd := m.list.SetSnapshot(m.snap)
		return m, tea.Batch(cmd, waitForChange(m.sync))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		if msg.err != nil {
			m.logger.Debug("operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		}
		return m, nil

	case prefsLoadedMsg:
		if msg.err != nil {
			m.currentView = ViewList
			return m, nil
		}
		cmd := m.prefsView.Load(m.prefs.Preferences())
		return m, cmd

	case prefs.SubmitMsg:
		m.currentView = ViewList
		if len(msg.Changes) == 0 {
			m.notice = "preferences unchanged"
			return m, nil
		}
		return m, savePreferencesCmd(m.prefs, msg.Changes)

	case prefs.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case prefsSavedMsg:
		if msg.err == nil {
			m.notice = fmt.Sprintf("%d preference(s) updated", msg.saved)
		}
		return m, nil

	case command.CommandMsg:
		return m.runCommand(string(msg))

	case command.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.currentView {
		case ViewList:
			return m.handleListKeys(msg)
		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = ViewList
			}
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// handleListKeys processes key input on the notification list.
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	c := m.snap.Criteria

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Preferences):
		m.currentView = ViewPreferences
		return m, fetchPreferencesCmd(m.prefs)

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		return m, markReadCmd(m.sync, n.ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, markAllReadCmd(m.sync)

	case key.Matches(msg, m.keys.Delete):
		n, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		return m, deleteCmd(m.sync, n.ID)

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(refreshCmd(m.sync), fetchStatsCmd(m.sync))

	case key.Matches(msg, m.keys.NextPage):
		if !m.snap.Cursor.HasMore {
			return m, nil
		}
		return m.fetch(c.WithPage(m.snap.Cursor.CurrentPage + 1))

	case key.Matches(msg, m.keys.PrevPage):
		if m.snap.Cursor.CurrentPage == 0 {
			return m, nil
		}
		return m.fetch(c.WithPage(m.snap.Cursor.CurrentPage - 1))

	case key.Matches(msg, m.keys.CycleType):
		return m.fetch(notiflist.NextType(c))

	case key.Matches(msg, m.keys.ToggleRead):
		return m.fetch(notiflist.NextRead(c))

	case key.Matches(msg, m.keys.ToggleCritical):
		return m.fetch(notiflist.NextCritical(c))

	case key.Matches(msg, m.keys.ResetFilters):
		return m.fetch(notiflist.ResetFilters(c))

	case key.Matches(msg, m.keys.ClearError):
		m.sync.ClearError()
		m.prefs.ClearError()
		m.snap = m.sync.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// fetch points both the displayed window and the polling loop at c.
func (m Model) fetch(c model.SearchCriteria) (tea.Model, tea.Cmd) {
	m.criteria = c
	m.sync.StartPolling(m.interval, c)
	return m, fetchCmd(m.sync, c)
}

// runCommand executes a palette line. Parse errors keep the palette open.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	cmd, err := command.Parse(line, m.snap.Criteria)
	if err != nil {
		m.commandView.SetError(err.Error())
		return m, nil
	}

	m.currentView = ViewList
	switch cmd.Action {
	case command.ActionRefresh:
		return m, tea.Batch(refreshCmd(m.sync), fetchStatsCmd(m.sync))
	case command.ActionMarkAllRead:
		return m, markAllReadCmd(m.sync)
	case command.ActionPreferences:
		m.currentView = ViewPreferences
		return m, fetchPreferencesCmd(m.prefs)
	case command.ActionQuit:
		return m.quit()
	default:
		return m.fetch(cmd.Criteria)
	}
}

// quit releases the Synchronizer before exiting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.sync.Close()
	return m, tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewPreferences:
		m.prefsView, cmd = m.prefsView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.snap.Stats, ui.SyncState{
		Loading: m.snap.Loading,
		Spinner: m.spinner.View(),
		Polling: m.snap.Polling,
	})
	return m.layout.RenderWithFrame(header, m.renderContent(), m.renderStatusBar())
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewPreferences:
		return m.prefsView.View()
	default:
		return m.list.View()
	}
}

// renderStatusBar shows the unacknowledged error, if any, otherwise a notice
// or the key hints.
func (m Model) renderStatusBar() string {
	errMsg := m.snap.Err
	if errMsg == "" {
		errMsg = m.prefs.Err()
	}
	return m.layout.RenderStatusBar(errMsg, m.notice, m.keyHints())
}

// keyHints returns the hints for the current view.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "esc back"
	case ViewCommand:
		return "enter run | esc cancel"
	case ViewPreferences:
		return "space toggle | enter next | esc cancel"
	default:
		return "enter read | A read all | d delete | t type | u read | c critical | s prefs | ? help | q quit"
	}
}
