package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/model"
)

// PreferenceStore is the remote side of the delivery preferences.
type PreferenceStore interface {
	ListPreferences(ctx context.Context) ([]model.NotificationPreference, error)
	UpdatePreference(ctx context.Context, id int64, update model.PreferenceUpdate) (*model.NotificationPreference, error)
}

// PreferenceManager holds the caller's per-type delivery preferences.
// Every operation is a single attempt; failures land in the error slot and
// leave the list as it was.
type PreferenceManager struct {
	store  PreferenceStore
	logger *zap.Logger

	mu      gosync.Mutex
	prefs   []model.NotificationPreference
	pending int
	errMsg  string
}

// NewPreferenceManager creates a PreferenceManager over the given store.
func NewPreferenceManager(store PreferenceStore, logger *zap.Logger) *PreferenceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceManager{store: store, logger: logger}
}

// FetchPreferences replaces the whole list with the store's.
func (m *PreferenceManager) FetchPreferences(ctx context.Context) error {
	m.begin(true)

	prefs, err := m.store.ListPreferences(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--

	if err != nil {
		m.errMsg = fmt.Sprintf("loading preferences: %v", err)
		m.logger.Warn("fetching preferences failed", zap.Error(err))
		return err
	}

	m.prefs = append([]model.NotificationPreference(nil), prefs...)
	return nil
}

// UpdatePreference sends a partial update and, on success, replaces the
// row with the one the server returned. The server's row wins over the
// request: disabling a type may also turn its email delivery off.
func (m *PreferenceManager) UpdatePreference(
	ctx context.Context,
	id int64,
	update model.PreferenceUpdate,
) error {
	m.begin(false)

	pref, err := m.store.UpdatePreference(ctx, id, update)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--

	if err != nil {
		m.errMsg = fmt.Sprintf("updating preference: %v", err)
		m.logger.Warn("updating preference failed", zap.Int64("id", id), zap.Error(err))
		return err
	}

	for i := range m.prefs {
		if m.prefs[i].ID == id {
			m.prefs[i] = *pref
			break
		}
	}
	return nil
}

// begin marks an operation as pending. Loading a fresh list also clears a
// previous error.
func (m *PreferenceManager) begin(clearErr bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending++
	if clearErr {
		m.errMsg = ""
	}
}

// Preferences returns a copy of the current list.
func (m *PreferenceManager) Preferences() []model.NotificationPreference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.NotificationPreference(nil), m.prefs...)
}

// Preference returns the row for a notification type.
func (m *PreferenceManager) Preference(t model.NotificationType) (model.NotificationPreference, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.prefs {
		if p.NotificationType == t {
			return p, true
		}
	}
	return model.NotificationPreference{}, false
}

// Loading reports whether an operation is pending.
func (m *PreferenceManager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Err returns the unacknowledged error message, or "".
func (m *PreferenceManager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// ClearError clears the error slot.
func (m *PreferenceManager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}
