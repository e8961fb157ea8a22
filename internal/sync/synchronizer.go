package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/model"
)

// NotificationStore is the remote notification store as used by the
// Synchronizer. remote.Adapter implements it over HTTP.
type NotificationStore interface {
	ListNotifications(ctx context.Context, criteria model.SearchCriteria) (*model.NotificationPage, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*model.NotificationStats, error)
}

// State is the lifecycle state of the notification list.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("synchronizer closed")

// Snapshot is a copy of the Synchronizer's state at one point in time.
type Snapshot struct {
	Notifications []model.Notification
	Stats         model.NotificationStats
	Cursor        model.Cursor
	Criteria      model.SearchCriteria
	State         State
	Loading       bool
	Polling       bool

	// Err is the unacknowledged error message, or "".
	Err string
}

// fetchToken identifies one Fetch call. Only the call holding the current
// token may apply its result.
type fetchToken struct {
	cancel context.CancelFunc
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithClock sets the time source used for optimistic readAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithTicker sets the ticker factory used by the polling loop.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(s *Synchronizer) { s.newTicker = newTicker }
}

// Synchronizer owns the client-side window of notifications: the list,
// its pagination cursor, and the derived counters. It keeps them in line
// with the remote store through filtered fetches, optimistic mutations,
// and an optional background polling loop.
//
// A Synchronizer is created by the presentation layer and must be released
// with Close.
type Synchronizer struct {
	store     NotificationStore
	logger    *zap.Logger
	now       func() time.Time
	newTicker func(time.Duration) Ticker

	mu            gosync.Mutex
	notifications []model.Notification
	stats         model.NotificationStats
	cursor        model.Cursor
	criteria      model.SearchCriteria
	settled       State
	errMsg        string
	current       *fetchToken
	mutations     int
	poll          *pollLoop
	closed        bool

	loops   gosync.WaitGroup
	changes chan struct{}
}

// New creates a Synchronizer over the given store.
func New(store NotificationStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:     store,
		logger:    zap.NewNop(),
		now:       time.Now,
		newTicker: newRealTicker,
		criteria:  model.DefaultCriteria(),
		settled:   StateIdle,
		changes:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Changes returns a channel that receives a value after state changes.
// Signals are coalesced: one receive may cover several changes, so
// receivers should read a fresh Snapshot each time. The channel is never
// closed.
func (s *Synchronizer) Changes() <-chan struct{} {
	return s.changes
}

// Fetch replaces the list, cursor, and counters with the store's response
// for criteria. Any fetch still in flight is cancelled first, and a
// superseded call never applies its result, whichever finishes first.
// A superseded or cancelled call returns nil. On failure the previous
// list and counters are kept and the error slot is set.
func (s *Synchronizer) Fetch(ctx context.Context, criteria model.SearchCriteria) error {
	return s.fetch(ctx, criteria, false)
}

// Refresh re-issues the most recently issued query, or the default query
// when nothing has been fetched yet.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	criteria := s.criteria.Clone()
	s.mu.Unlock()

	return s.fetch(ctx, criteria, false)
}

// fetch runs one query. Background fetches come from the polling loop:
// they never clear the error slot and only report a failure when the slot
// is empty, so a pending user-facing message is not replaced by a generic
// one.
func (s *Synchronizer) fetch(
	ctx context.Context,
	criteria model.SearchCriteria,
	background bool,
) error {
	criteria = criteria.Normalize()

	reqCtx, cancel := context.WithCancel(ctx)
	tok := &fetchToken{cancel: cancel}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return ErrClosed
	}
	if s.current != nil {
		s.current.cancel()
	}
	s.current = tok
	s.criteria = criteria.Clone()
	if !background {
		s.errMsg = ""
	}
	s.mu.Unlock()
	s.signal()

	var page *model.NotificationPage
	err := criteria.Validate()
	if err == nil {
		page, err = s.store.ListNotifications(reqCtx, criteria)
	}
	cancel()

	s.mu.Lock()
	if s.current != tok {
		s.mu.Unlock()
		return nil
	}
	s.current = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.mu.Unlock()
			s.signal()
			return nil
		}

		s.settled = StateErrored
		if !background || s.errMsg == "" {
			s.errMsg = fmt.Sprintf("loading notifications: %v", err)
		}
		s.mu.Unlock()
		s.signal()

		s.logger.Warn("fetching notifications failed",
			zap.Bool("background", background),
			zap.Int("page", criteria.Page),
			zap.Error(err),
		)
		return err
	}

	s.apply(page)
	if !background {
		s.errMsg = ""
	}
	s.mu.Unlock()
	s.signal()

	s.logger.Debug("notifications fetched",
		zap.Bool("background", background),
		zap.Int("page", page.CurrentPage),
		zap.Int("count", len(page.Notifications)),
		zap.Int("unread", page.UnreadCount),
	)
	return nil
}

// apply replaces the window with page. The per-type breakdown is not part
// of the list response, so the last known one is kept. Callers hold s.mu.
func (s *Synchronizer) apply(page *model.NotificationPage) {
	items := make([]model.Notification, len(page.Notifications))
	for i, n := range page.Notifications {
		items[i] = n.Clone()
	}
	s.notifications = items

	s.cursor = model.Cursor{
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		HasMore:     page.HasNext,
	}

	s.stats = model.NotificationStats{
		UnreadCount:   page.UnreadCount,
		CriticalCount: page.CriticalCount,
		TotalCount:    page.TotalElements,
		ByType:        s.stats.ByType,
	}

	s.settled = StateReady
}

// FetchStats replaces the counters, including the per-type breakdown,
// with the store's detailed statistics. Failures are logged but do not
// touch the error slot.
func (s *Synchronizer) FetchStats(ctx context.Context) error {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("fetching notification stats failed", zap.Error(err))
		}
		return err
	}

	s.mu.Lock()
	s.stats = stats.Clone()
	s.mu.Unlock()
	s.signal()

	return nil
}

// MarkAsRead marks a notification read. When the notification is in the
// local window and unread, it is updated and the unread counter decremented
// before the store is called, along with the critical counter for a critical
// item. An already-read local notification is left alone and the store is
// not called.
//
// Read receipts are never rolled back: if the store call fails the error
// slot is set but the local item stays read. A refresh reconciles any
// drift.
func (s *Synchronizer) MarkAsRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		n := &s.notifications[i]
		if n.Read {
			s.mu.Unlock()
			return nil
		}
		n.MarkRead(s.now())
		s.stats.UnreadCount = decrement(s.stats.UnreadCount)
		if n.Critical {
			s.stats.CriticalCount = decrement(s.stats.CriticalCount)
		}
	}
	s.mutations++
	s.mu.Unlock()
	s.signal()

	err := s.store.MarkRead(context.WithoutCancel(ctx), id)
	s.finishMutation("marking notification as read", err, zap.Int64("id", id))
	return err
}

// MarkAllAsRead marks every local notification read with one shared
// timestamp and zeroes the unread and critical counters, then calls the
// store. The total is unchanged. Like MarkAsRead, a failure is reported but not rolled back.
func (s *Synchronizer) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	now := s.now()
	for i := range s.notifications {
		s.notifications[i].MarkRead(now)
	}
	s.stats.UnreadCount = 0
	s.stats.CriticalCount = 0
	s.mutations++
	s.mu.Unlock()
	s.signal()

	err := s.store.MarkAllRead(context.WithoutCancel(ctx))
	s.finishMutation("marking all notifications as read", err)
	return err
}

// Delete removes a notification from the local window and adjusts the
// counters, then asks the store to delete it. An id that is not in the
// window leaves local state alone but is still sent to the store. A failed
// delete is reported; the item is not restored.
func (s *Synchronizer) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		n := s.notifications[i]
		s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)

		s.stats.TotalCount = decrement(s.stats.TotalCount)
		if !n.Read {
			s.stats.UnreadCount = decrement(s.stats.UnreadCount)
			if n.Critical {
				s.stats.CriticalCount = decrement(s.stats.CriticalCount)
			}
		}
		if c, ok := s.stats.ByType[n.Type]; ok {
			s.stats.ByType[n.Type] = decrement(c)
		}
	}
	s.mutations++
	s.mu.Unlock()
	s.signal()

	err := s.store.DeleteNotification(context.WithoutCancel(ctx), id)
	s.finishMutation("deleting notification", err, zap.Int64("id", id))
	return err
}

// finishMutation records the outcome of a store mutation. The result is
// written even after Close; nothing reads a closed Synchronizer.
func (s *Synchronizer) finishMutation(action string, err error, fields ...zap.Field) {
	s.mu.Lock()
	s.mutations--
	if err != nil {
		s.errMsg = fmt.Sprintf("%s: %v", action, err)
	}
	s.mu.Unlock()
	s.signal()

	if err != nil {
		s.logger.Warn(action+" failed", append(fields, zap.Error(err))...)
	}
}

// ClearError clears the error slot without touching data.
func (s *Synchronizer) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.signal()
}

// Err returns the unacknowledged error message, or "".
func (s *Synchronizer) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Loading reports whether a fetch or a mutation is pending.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil || s.mutations > 0
}

// Snapshot returns a deep copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Notification, len(s.notifications))
	for i, n := range s.notifications {
		items[i] = n.Clone()
	}

	return Snapshot{
		Notifications: items,
		Stats:         s.stats.Clone(),
		Cursor:        s.cursor,
		Criteria:      s.criteria.Clone(),
		State:         s.stateLocked(),
		Loading:       s.current != nil || s.mutations > 0,
		Polling:       s.poll != nil,
		Err:           s.errMsg,
	}
}

// Close stops polling, cancels the in-flight fetch, and waits for the
// polling loop to exit. Pending mutations are allowed to finish.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopPollingLocked()
	if s.current != nil {
		s.current.cancel()
	}
	s.mu.Unlock()

	s.loops.Wait()
}

func (s *Synchronizer) stateLocked() State {
	if s.current != nil {
		return StateLoading
	}
	return s.settled
}

func (s *Synchronizer) indexOf(id int64) int {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			return i
		}
	}
	return -1
}

// signal notifies Changes without blocking.
func (s *Synchronizer) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
		// A signal is already pending.
	}
}

// decrement subtracts one, never going below zero.
func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}
