package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/nhle/rdq-notify/internal/model"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore is an in-memory NotificationStore. List calls for a page can be
// held on a gate; a held call ignores its context, like a server whose
// response arrives after the client gave up on it.
type fakeStore struct {
	mu gosync.Mutex

	pages   map[int]*model.NotificationPage
	listErr error
	gates   map[int]chan struct{}
	stats   *model.NotificationStats

	mutationErr  error
	mutationGate chan struct{}

	listCalls    []model.SearchCriteria
	markRead     []int64
	markAllCalls int
	deletes      []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages: make(map[int]*model.NotificationPage),
		gates: make(map[int]chan struct{}),
	}
}

func (f *fakeStore) setPage(page *model.NotificationPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.CurrentPage] = page
}

// hold makes list calls for page block until the returned func is called.
func (f *fakeStore) hold(page int) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[page] = gate
	return func() { close(gate) }
}

func (f *fakeStore) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeStore) ListNotifications(
	_ context.Context,
	c model.SearchCriteria,
) (*model.NotificationPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, c)
	gate := f.gates[c.Page]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	page, ok := f.pages[c.Page]
	if !ok {
		return &model.NotificationPage{CurrentPage: c.Page, PageSize: c.Size}, nil
	}
	cp := *page
	cp.Notifications = append([]model.Notification(nil), page.Notifications...)
	return &cp, nil
}

func (f *fakeStore) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeStore) mutation(record func()) error {
	f.mu.Lock()
	record()
	gate := f.mutationGate
	err := f.mutationErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeStore) MarkRead(_ context.Context, id int64) error {
	return f.mutation(func() { f.markRead = append(f.markRead, id) })
}

func (f *fakeStore) MarkAllRead(_ context.Context) error {
	return f.mutation(func() { f.markAllCalls++ })
}

func (f *fakeStore) DeleteNotification(_ context.Context, id int64) error {
	return f.mutation(func() { f.deletes = append(f.deletes, id) })
}

func (f *fakeStore) Stats(_ context.Context) (*model.NotificationStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats == nil {
		return nil, errStoreDown
	}
	s := f.stats.Clone()
	return &s, nil
}

// fakeClock hands out manually driven tickers.
type fakeClock struct {
	mu      gosync.Mutex
	tickers []*fakeTicker
}

type fakeTicker struct {
	mu      gosync.Mutex
	period  time.Duration
	elapsed time.Duration
	ch      chan time.Time
	stopped bool
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{period: d, ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves virtual time forward, firing every live ticker whose
// period elapsed. Like time.Ticker, ticks are dropped when the receiver
// is behind.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	tickers := append([]*fakeTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		t.advance(d)
	}
}

func (c *fakeClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		t.mu.Lock()
		if !t.stopped {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

func (t *fakeTicker) advance(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.elapsed += d
	for t.elapsed >= t.period {
		t.elapsed -= t.period
		select {
		case t.ch <- time.Time{}:
		default:
		}
	}
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// makePage builds a page of n notifications starting at firstID. Every
// notification is unread unless listed in read.
func makePage(page, size, firstID, n, total int, read ...int64) *model.NotificationPage {
	readSet := make(map[int64]bool, len(read))
	for _, id := range read {
		readSet[id] = true
	}

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	items := make([]model.Notification, 0, n)
	unread := 0
	for i := 0; i < n; i++ {
		id := int64(firstID + i)
		item := model.Notification{
			ID:        id,
			Type:      model.TypeRdqAssigned,
			Title:     fmt.Sprintf("RDQ %d assigned", id),
			Message:   "A new RDQ was assigned to you",
			CreatedAt: created.Add(-time.Duration(i) * time.Minute),
			UserID:    7,
		}
		if readSet[id] {
			item.MarkRead(created)
		} else {
			unread++
		}
		items = append(items, item)
	}

	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return &model.NotificationPage{
		Notifications: items,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      size,
		HasNext:       page+1 < totalPages,
		HasPrevious:   page > 0,
		UnreadCount:   unread,
	}
}
