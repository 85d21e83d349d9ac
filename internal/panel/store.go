package panel

import (
	"sync"
	"time"

	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/report"
)

// Snapshot is an immutable copy of the panel state handed to consumers.
type Snapshot struct {
	Status   backend.RemoteStatus `json:"status"`
	Sections report.Sections      `json:"sections"`
	Phase    Phase                `json:"phase"`
	// Seq counts successful polls.
	Seq      uint64    `json:"seq"`
	LastPoll time.Time `json:"last_poll,omitempty"`
	// LastError is the text of the most recent failed poll, cleared by the
	// next success. It is diagnostic only.
	LastError string `json:"last_error,omitempty"`
}

// CanUpload reports whether there is a report the backend could upload.
func (s Snapshot) CanUpload() bool {
	return s.Status.HasReport()
}

// ActionItems returns the action section as list entries.
func (s Snapshot) ActionItems() []string {
	return report.ActionItemList(s.Sections.ActionItems)
}

// Store owns the single status/sections pair. Status is only ever replaced as
// a whole; sections are recomputed inside the store when the report text
// changes.
type Store struct {
	mu       sync.RWMutex
	markers  report.Markers
	status   backend.RemoteStatus
	sections report.Sections
	text     string // report text the sections were derived from
	seq      uint64
	lastPoll time.Time
	lastErr  string

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// NewStore creates a Store holding the startup status. markers selects the
// heading set used to sectionize reports.
func NewStore(markers report.Markers) *Store {
	return &Store{
		markers:  markers,
		status:   backend.InitialStatus(),
		sections: report.Empty(),
		subs:     make(map[int]chan struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Status:    cloneStatus(s.status),
		Sections:  s.sections,
		Phase:     PhaseOf(s.status),
		Seq:       s.seq,
		LastPoll:  s.lastPoll,
		LastError: s.lastErr,
	}
}

// ReplaceStatus installs status as the current remote status. Fields absent
// from status become unknown; nothing is merged from the previous value.
func (s *Store) ReplaceStatus(status backend.RemoteStatus, at time.Time) {
	s.mu.Lock()
	s.status = cloneStatus(status)
	if text := status.ReportText(); text != s.text {
		s.text = text
		s.sections = s.markers.Sectionize(text)
	}
	s.seq++
	s.lastPoll = at
	s.lastErr = ""
	s.mu.Unlock()

	s.notify()
}

// RecordFailure notes a failed poll. The status is left untouched.
func (s *Store) RecordFailure(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()

	s.notify()
}

// Subscribe returns a channel that receives a signal after every change, and
// a function that cancels the subscription. Signals coalesce: a slow reader
// sees one pending signal and should re-read the snapshot.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneStatus(st backend.RemoteStatus) backend.RemoteStatus {
	var out backend.RemoteStatus
	if st.IsRecording != nil {
		out.IsRecording = backend.Bool(*st.IsRecording)
	}
	if st.IsProcessing != nil {
		out.IsProcessing = backend.Bool(*st.IsProcessing)
	}
	if st.Message != nil {
		out.Message = backend.String(*st.Message)
	}
	if st.LastTranscript != nil {
		out.LastTranscript = backend.String(*st.LastTranscript)
	}
	return out
}
