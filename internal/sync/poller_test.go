package sync

import (
	"testing"
	"time"

	"github.com/nhle/rdq-notify/internal/model"
)

func TestStartPollingTwiceKeepsOneLoop(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{}
	s := newTestSynchronizer(store, WithTicker(clock.NewTicker))
	defer s.Close()

	s.StartPolling(time.Minute, model.DefaultCriteria())
	s.StartPolling(time.Minute, model.DefaultCriteria())

	if got := clock.live(); got != 1 {
		t.Fatalf("live tickers = %d, want 1", got)
	}
	if !s.Polling() {
		t.Fatal("Polling() = false after StartPolling")
	}

	clock.Advance(time.Minute)
	waitFor(t, "first poll", func() bool { return store.listCount() == 1 })

	time.Sleep(20 * time.Millisecond)
	if got := store.listCount(); got != 1 {
		t.Errorf("fetches after one interval = %d, want 1", got)
	}
}

func TestStartPollingDoesNotFetchImmediately(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{}
	s := newTestSynchronizer(store, WithTicker(clock.NewTicker))
	defer s.Close()

	s.StartPolling(time.Minute, model.DefaultCriteria())
	clock.Advance(59 * time.Second)

	time.Sleep(20 * time.Millisecond)
	if got := store.listCount(); got != 0 {
		t.Errorf("fetches before the first interval = %d, want 0", got)
	}
}

func TestPollingUsesGivenCriteria(t *testing.T) {
	store := newFakeStore()
	store.setPage(makePage(1, 10, 11, 3, 13))
	clock := &fakeClock{}
	s := newTestSynchronizer(store, WithTicker(clock.NewTicker))
	defer s.Close()

	criteria := model.SearchCriteria{Page: 1, Size: 10, Read: model.Bool(false)}
	s.StartPolling(time.Minute, criteria)

	clock.Advance(time.Minute)
	waitFor(t, "poll applied", func() bool { return s.State() == StateReady })

	store.mu.Lock()
	got := store.listCalls[0]
	store.mu.Unlock()
	if got.Page != 1 || got.Size != 10 || got.Read == nil || *got.Read {
		t.Errorf("poll criteria = %+v", got)
	}
	if n := len(s.Snapshot().Notifications); n != 3 {
		t.Errorf("polled window has %d items, want 3", n)
	}
}

func TestStopPollingStopsFetches(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{}
	s := newTestSynchronizer(store, WithTicker(clock.NewTicker))
	defer s.Close()

	s.StartPolling(time.Minute, model.DefaultCriteria())
	clock.Advance(time.Minute)
	waitFor(t, "first poll", func() bool { return store.listCount() == 1 })

	s.StopPolling()
	s.StopPolling()
	if s.Polling() {
		t.Fatal("Polling() = true after StopPolling")
	}

	for i := 0; i < 5; i++ {
		clock.Advance(time.Minute)
	}
	time.Sleep(20 * time.Millisecond)
	if got := store.listCount(); got != 1 {
		t.Errorf("fetches after StopPolling = %d, want 1", got)
	}
	if got := clock.live(); got != 0 {
		t.Errorf("live tickers = %d, want 0", got)
	}
}

func TestStopPollingWithoutLoop(t *testing.T) {
	s := newTestSynchronizer(newFakeStore())
	defer s.Close()

	s.StopPolling()
	if s.Polling() {
		t.Error("Polling() = true on a fresh synchronizer")
	}
}

func TestStartPollingDefaultInterval(t *testing.T) {
	clock := &fakeClock{}
	s := newTestSynchronizer(newFakeStore(), WithTicker(clock.NewTicker))
	defer s.Close()

	s.StartPolling(0, model.DefaultCriteria())

	clock.mu.Lock()
	defer clock.mu.Unlock()
	if len(clock.tickers) != 1 || clock.tickers[0].period != DefaultPollInterval {
		t.Fatalf("ticker period = %v, want %v", clock.tickers[0].period, DefaultPollInterval)
	}
}

func TestCloseStopsPolling(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{}
	s := newTestSynchronizer(store, WithTicker(clock.NewTicker))

	s.StartPolling(time.Minute, model.DefaultCriteria())
	s.Close()

	if s.Polling() {
		t.Error("Polling() = true after Close")
	}
	clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	if got := store.listCount(); got != 0 {
		t.Errorf("fetches after Close = %d, want 0", got)
	}

	s.StartPolling(time.Minute, model.DefaultCriteria())
	if s.Polling() {
		t.Error("StartPolling after Close started a loop")
	}
}
