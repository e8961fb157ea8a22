package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/model"
)

// DefaultPollInterval is used when StartPolling gets a non-positive interval.
const DefaultPollInterval = 30 * time.Second

// Ticker delivers ticks at a fixed interval until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// pollLoop is one running polling goroutine.
type pollLoop struct {
	cancel context.CancelFunc
	ticker Ticker
}

// StartPolling fetches criteria in the background every interval. The
// first fetch happens one interval from now. Only one loop runs at a
// time: calling StartPolling again replaces the running loop.
func (s *Synchronizer) StartPolling(interval time.Duration, criteria model.SearchCriteria) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopPollingLocked()

	ctx, cancel := context.WithCancel(context.Background())
	loop := &pollLoop{cancel: cancel, ticker: s.newTicker(interval)}
	s.poll = loop
	s.loops.Add(1)
	s.mu.Unlock()

	s.logger.Debug("polling started", zap.Duration("interval", interval))

	go s.runPoll(ctx, loop, criteria.Clone())
	s.signal()
}

// StopPolling stops the running loop, if any. A fetch the loop already
// started is left to finish; only future ticks are cancelled.
func (s *Synchronizer) StopPolling() {
	s.mu.Lock()
	stopped := s.stopPollingLocked()
	s.mu.Unlock()

	if stopped {
		s.logger.Debug("polling stopped")
		s.signal()
	}
}

// Polling reports whether a polling loop is running.
func (s *Synchronizer) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll != nil
}

// stopPollingLocked stops the ticker right away so no further tick is
// delivered, then signals the goroutine to exit. Callers hold s.mu.
func (s *Synchronizer) stopPollingLocked() bool {
	if s.poll == nil {
		return false
	}
	s.poll.ticker.Stop()
	s.poll.cancel()
	s.poll = nil
	return true
}

// runPoll runs the polling loop until ctx is cancelled.
func (s *Synchronizer) runPoll(ctx context.Context, loop *pollLoop, criteria model.SearchCriteria) {
	defer s.loops.Done()
	defer loop.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-loop.ticker.C():
			// A tick may race with StopPolling.
			if ctx.Err() != nil {
				return
			}
			// The request is not tied to ctx: stopping the loop must not
			// abort a fetch it already issued.
			_ = s.fetch(context.Background(), criteria, true)
		}
	}
}
