package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/logging"
)

// DefaultPollInterval is the time between status polls.
const DefaultPollInterval = 2 * time.Second

// ErrLoopStopped is returned by PollOnce after the running loop was stopped.
var ErrLoopStopped = errors.New("sync loop stopped")

// StatusFetcher fetches the remote status. *backend.Client implements it.
type StatusFetcher interface {
	GetStatus(ctx context.Context) (*backend.RemoteStatus, error)
}

// SyncLoop keeps a Store in step with the recording service.
type SyncLoop struct {
	fetcher  StatusFetcher
	store    *Store
	interval time.Duration
	logger   *logging.Logger
	now      func() time.Time

	mu     sync.Mutex
	handle *Handle // most recent Start
}

// SyncOption configures a SyncLoop.
type SyncOption func(*SyncLoop)

// WithLogger sets the logger poll failures are reported to.
func WithLogger(l *logging.Logger) SyncOption {
	return func(s *SyncLoop) {
		s.logger = l
	}
}

// NewSyncLoop creates a loop polling fetcher every interval. A non-positive
// interval selects DefaultPollInterval.
func NewSyncLoop(fetcher StatusFetcher, store *Store, interval time.Duration, opts ...SyncOption) *SyncLoop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s := &SyncLoop{
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		logger:   logging.Default().With("component", "sync"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the poll interval.
func (s *SyncLoop) Interval() time.Duration {
	return s.interval
}

// Handle controls a running loop.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}

	// mu orders Stop against applying poll results: once Stop returns,
	// no result is applied.
	mu sync.Mutex
}

// Stop cancels the timer and any in-flight polls. Calling it more than once
// is a no-op.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.mu.Lock()
		h.cancel()
		h.mu.Unlock()
	})
}

// Done is closed once the ticker goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start begins polling. The first poll happens one interval after Start; each
// tick polls on its own goroutine so a slow response never delays the timer.
// The loop ends when Stop is called or ctx is canceled.
func (s *SyncLoop) Start(ctx context.Context) *Handle {
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ctx:    loopCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				go s.poll(h)
			}
		}
	}()

	s.logger.Debug("sync loop started", "interval", s.interval.String())
	return h
}

// PollOnce performs a single synchronous poll with the loop's success and
// failure handling. The error is returned for callers that want to report
// it; the store has already been updated either way.
//
// Once a started loop has been stopped, PollOnce cancels its request and
// leaves the store alone, returning ErrLoopStopped.
func (s *SyncLoop) PollOnce(ctx context.Context) error {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h == nil {
		return s.apply(s.fetcher.GetStatus(ctx))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	release := context.AfterFunc(h.ctx, cancel)
	defer release()

	status, err := s.fetcher.GetStatus(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return ErrLoopStopped
	}
	return s.apply(status, err)
}

func (s *SyncLoop) apply(status *backend.RemoteStatus, err error) error {
	if err != nil {
		s.fail(err)
		return err
	}
	s.store.ReplaceStatus(*status, s.now())
	return nil
}

func (s *SyncLoop) poll(h *Handle) {
	status, err := s.fetcher.GetStatus(h.ctx)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		// Stopped while the request was in flight.
		return
	}
	s.apply(status, err)
}

func (s *SyncLoop) fail(err error) {
	s.logger.Warn("status poll failed", "error", err)
	s.store.RecordFailure(err)
}
