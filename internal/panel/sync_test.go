package panel

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/report"
	"github.com/thruflo/recpanel/internal/testutil"
)

// stubFetcher returns canned results and counts calls.
type stubFetcher struct {
	mu     sync.Mutex
	status *backend.RemoteStatus
	err    error
	calls  int32

	// gate, when set, blocks every fetch until it is closed. Blocked
	// fetches ignore cancellation to simulate a response that arrives late.
	gate chan struct{}
}

func (f *stubFetcher) GetStatus(ctx context.Context) (*backend.RemoteStatus, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	st := *f.status
	return &st, nil
}

func (f *stubFetcher) set(status backend.RemoteStatus, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = &status
	f.err = err
}

func (f *stubFetcher) count() int {
	return int(atomic.LoadInt32(&f.calls))
}

func newTestLogger(buf *testutil.SafeBuffer) *logging.Logger {
	l := logging.NewWithWriter(buf)
	l.SetLevel(logging.LevelWarn)
	return l
}

func TestNewSyncLoop_DefaultInterval(t *testing.T) {
	t.Parallel()

	loop := NewSyncLoop(&stubFetcher{}, NewStore(report.PlainMarkers), 0)
	assert.Equal(t, DefaultPollInterval, loop.Interval())
}

func TestSyncLoop_PollOnce(t *testing.T) {
	t.Parallel()

	t.Run("success replaces status", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusRecording(), nil)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, time.Second, WithLogger(logging.NewNop()))

		require.NoError(t, loop.PollOnce(context.Background()))

		snap := store.Snapshot()
		testutil.AssertStatusEqual(t, testutil.StatusRecording(), snap.Status)
		assert.Equal(t, PhaseRecording, snap.Phase)
		assert.Equal(t, uint64(1), snap.Seq)
	})

	t.Run("failure leaves status and logs warning", func(t *testing.T) {
		t.Parallel()

		var buf testutil.SafeBuffer
		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusWithReport(testutil.SampleReportPlain), nil)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, time.Second, WithLogger(newTestLogger(&buf)))

		require.NoError(t, loop.PollOnce(context.Background()))
		before := store.Snapshot()

		fetcher.set(backend.RemoteStatus{}, errors.New("connection refused"))
		err := loop.PollOnce(context.Background())
		require.Error(t, err)

		after := store.Snapshot()
		testutil.AssertStatusEqual(t, before.Status, after.Status)
		assert.Equal(t, before.Sections, after.Sections)
		assert.Equal(t, before.Seq, after.Seq)
		assert.Equal(t, "connection refused", after.LastError)

		out := buf.String()
		assert.Contains(t, out, "WARN")
		assert.Contains(t, out, "status poll failed")
		assert.Contains(t, out, "connection refused")
	})

	t.Run("missing fields become unknown", func(t *testing.T) {
		t.Parallel()

		fake, url := testutil.NewFakeBackend(t)
		fake.SetState(false, false, backend.MessageComplete, testutil.SampleReportPlain)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(backend.NewClient(url), store, time.Second, WithLogger(logging.NewNop()))

		require.NoError(t, loop.PollOnce(context.Background()))
		assert.True(t, store.Snapshot().CanUpload())

		fake.SetRawStatus(`{"is_recording": true, "is_processing": false}`)
		require.NoError(t, loop.PollOnce(context.Background()))

		snap := store.Snapshot()
		testutil.AssertFieldUnknown(t, snap.Status, backend.FieldMessage)
		testutil.AssertFieldUnknown(t, snap.Status, backend.FieldLastTranscript)
		assert.False(t, snap.CanUpload())
		assert.Equal(t, report.Empty(), snap.Sections)
	})

	t.Run("non-2xx leaves status byte-equal", func(t *testing.T) {
		t.Parallel()

		fake, url := testutil.NewFakeBackend(t)
		fake.SetState(true, false, backend.MessageRecording, "")
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(backend.NewClient(url), store, time.Second, WithLogger(logging.NewNop()))

		require.NoError(t, loop.PollOnce(context.Background()))
		before := testutil.MustMarshalJSON(t, store.Snapshot().Status)

		fake.FailStatus(http.StatusInternalServerError)
		require.Error(t, loop.PollOnce(context.Background()))

		assert.Equal(t, string(before), string(testutil.MustMarshalJSON(t, store.Snapshot().Status)))
	})
}

func TestSyncLoop_Start(t *testing.T) {
	t.Parallel()

	t.Run("polls repeatedly", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusProcessing(), nil)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, 10*time.Millisecond, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())
		defer h.Stop()

		require.Eventually(t, func() bool {
			return store.Snapshot().Seq >= 3
		}, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, PhaseProcessing, store.Snapshot().Phase)
	})

	t.Run("first poll waits one interval", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusIdle(), nil)
		loop := NewSyncLoop(fetcher, NewStore(report.PlainMarkers), time.Hour, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())
		defer h.Stop()

		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, 0, fetcher.count())
	})

	t.Run("keeps ticking through failures", func(t *testing.T) {
		t.Parallel()

		var buf testutil.SafeBuffer
		fetcher := &stubFetcher{}
		fetcher.set(backend.RemoteStatus{}, errors.New("connection refused"))
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, 10*time.Millisecond, WithLogger(newTestLogger(&buf)))

		h := loop.Start(context.Background())
		defer h.Stop()

		require.Eventually(t, func() bool {
			return fetcher.count() >= 3
		}, 2*time.Second, 5*time.Millisecond)

		fetcher.set(testutil.StatusRecording(), nil)
		require.Eventually(t, func() bool {
			return store.Snapshot().Phase == PhaseRecording
		}, 2*time.Second, 5*time.Millisecond)
		assert.Contains(t, buf.String(), "status poll failed")
	})

	t.Run("stop is idempotent and halts polling", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusIdle(), nil)
		loop := NewSyncLoop(fetcher, NewStore(report.PlainMarkers), 5*time.Millisecond, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())
		require.Eventually(t, func() bool {
			return fetcher.count() >= 1
		}, 2*time.Second, time.Millisecond)

		h.Stop()
		h.Stop()

		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatal("loop did not exit after Stop")
		}

		// Let any poll spawned by the final tick register.
		time.Sleep(10 * time.Millisecond)
		calls := fetcher.count()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, calls, fetcher.count())
	})

	t.Run("late result after stop is discarded", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{gate: make(chan struct{})}
		fetcher.set(testutil.StatusRecording(), nil)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, 5*time.Millisecond, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())
		require.Eventually(t, func() bool {
			return fetcher.count() >= 1
		}, 2*time.Second, time.Millisecond)

		h.Stop()
		close(fetcher.gate)

		time.Sleep(30 * time.Millisecond)
		snap := store.Snapshot()
		assert.Zero(t, snap.Seq)
		assert.Equal(t, PhaseIdle, snap.Phase)
	})

	t.Run("parent context cancellation stops loop", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusIdle(), nil)
		loop := NewSyncLoop(fetcher, NewStore(report.PlainMarkers), 5*time.Millisecond, WithLogger(logging.NewNop()))

		ctx, cancel := context.WithCancel(context.Background())
		h := loop.Start(ctx)
		cancel()

		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatal("loop did not exit after context cancel")
		}
		h.Stop()
	})

	t.Run("end to end against fake service", func(t *testing.T) {
		t.Parallel()

		fake, url := testutil.NewFakeBackend(t)
		store := NewStore(report.DecoratedMarkers)
		loop := NewSyncLoop(backend.NewClient(url), store, 10*time.Millisecond, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())
		defer h.Stop()

		fake.SetState(true, false, backend.MessageRecording, "")
		require.Eventually(t, func() bool {
			return store.Snapshot().Phase == PhaseRecording
		}, 2*time.Second, 5*time.Millisecond)

		fake.SetState(false, false, backend.MessageComplete, testutil.SampleReportDecorated)
		require.Eventually(t, func() bool {
			return store.Snapshot().CanUpload()
		}, 2*time.Second, 5*time.Millisecond)

		assert.Equal(t, testutil.SampleSummary, store.Snapshot().Sections.Summary)
	})
}

func TestSyncLoop_PollOnceAfterStop(t *testing.T) {
	t.Parallel()

	t.Run("refused once stopped", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{}
		fetcher.set(testutil.StatusRecording(), nil)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, time.Hour, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())
		require.NoError(t, loop.PollOnce(context.Background()))
		assert.Equal(t, uint64(1), store.Snapshot().Seq)

		h.Stop()
		fetcher.set(testutil.StatusProcessing(), nil)

		assert.ErrorIs(t, loop.PollOnce(context.Background()), ErrLoopStopped)
		snap := store.Snapshot()
		assert.Equal(t, uint64(1), snap.Seq)
		assert.Equal(t, PhaseRecording, snap.Phase)
	})

	t.Run("in-flight result dropped by stop", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{gate: make(chan struct{})}
		fetcher.set(testutil.StatusRecording(), nil)
		store := NewStore(report.PlainMarkers)
		loop := NewSyncLoop(fetcher, store, time.Hour, WithLogger(logging.NewNop()))

		h := loop.Start(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- loop.PollOnce(context.Background()) }()

		require.Eventually(t, func() bool {
			return fetcher.count() == 1
		}, 2*time.Second, time.Millisecond)

		h.Stop()
		close(fetcher.gate)

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, ErrLoopStopped)
		case <-time.After(2 * time.Second):
			t.Fatal("PollOnce did not return")
		}
		assert.Zero(t, store.Snapshot().Seq)
	})
}
