package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Messages the recording service reports while moving through a session.
const (
	MessageRecording  = "Recording in progress..."
	MessageSaved      = "Recording saved. Starting transcription..."
	MessageComplete   = "Transcription & Intelligence Complete. Ready to Sync."
	MessageLocalOnly  = "Transcribed (Local Only - No Drive Credentials)"
	MessageNoReport   = "No transcript available to upload"
	MessageNoUpload   = "Upload failed or not configured"
	MessageUploaded   = "Uploaded"
	DetailAlreadyRec  = "Already recording"
	DetailNotRecoding = "Not recording"
)

// RenderReport builds a report in the service's template, with decorated
// headings.
func RenderReport(summary, actions, transcript string) string {
	return fmt.Sprintf(`# Meeting Intelligence Report

## 📝 Executive Summary
%s

## 🚀 Action Items & Key Tasks
%s

## 💬 Full Transcript
%s
`, summary, actions, transcript)
}

// DefaultReport is what the fake publishes when processing completes and no
// ReportFunc is set.
func DefaultReport() string {
	return RenderReport(
		"The team reviewed the release plan and agreed to ship on Friday.",
		"- Alice will update the changelog.\n- Bob will schedule the follow up review.",
		"[00:00:01] Alice: Let's go over the release.\n[00:00:07] Bob: Sounds good.",
	)
}

// FakeService is an in-process stand-in for the recording service. It follows
// the service's state machine: start is rejected while recording, stop is
// rejected while idle, and stop moves the session into processing until
// CompleteProcessing runs (automatically after ProcessDelay when it is set).
type FakeService struct {
	// ProcessDelay, when positive, completes processing automatically.
	ProcessDelay time.Duration
	// ReportFunc produces the report published on completion.
	ReportFunc func() string
	// UploadLink, when set, is returned by successful uploads.
	UploadLink string

	mu         sync.Mutex
	recording  bool
	processing bool
	message    string
	report     string

	statusCode   int    // forced /status failure code, 0 = healthy
	rawStatus    string // forced /status body
	statusDelay  time.Duration
	commandCodes map[string]int // forced failure per command path

	calls  map[string]int
	timers []*time.Timer
}

// NewFakeService creates an idle fake.
func NewFakeService() *FakeService {
	return &FakeService{
		message:      InitialMessage,
		commandCodes: make(map[string]int),
		calls:        make(map[string]int),
	}
}

// ServeHTTP implements http.Handler.
func (f *FakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.Method+" "+r.URL.Path]++
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == PathStatus:
		f.handleStatus(w, r)
	case r.Method == http.MethodPost && r.URL.Path == PathStart:
		f.handleStart(w)
	case r.Method == http.MethodPost && r.URL.Path == PathStop:
		f.handleStop(w)
	case r.Method == http.MethodPost && r.URL.Path == PathUploadLast:
		f.handleUpload(w)
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not Found"})
	}
}

func (f *FakeService) handleStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	delay := f.statusDelay
	code := f.statusCode
	raw := f.rawStatus
	body := map[string]interface{}{
		"is_recording":    f.recording,
		"is_processing":   f.processing,
		"message":         f.message,
		"last_transcript": f.report,
	}
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if code != 0 {
		writeJSON(w, code, errorBody{Detail: "status unavailable"})
		return
	}
	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(raw))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeService) handleStart(w http.ResponseWriter) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if code := f.commandCodes[PathStart]; code != 0 {
		writeJSON(w, code, errorBody{Detail: "start failed"})
		return
	}
	if f.recording {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: DetailAlreadyRec})
		return
	}

	f.recording = true
	f.message = MessageRecording
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "started",
		"file":   fmt.Sprintf("meeting_%s.wav", time.Now().Format("20060102_150405")),
	})
}

func (f *FakeService) handleStop(w http.ResponseWriter) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if code := f.commandCodes[PathStop]; code != 0 {
		writeJSON(w, code, errorBody{Detail: "stop failed"})
		return
	}
	if !f.recording {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: DetailNotRecoding})
		return
	}

	f.recording = false
	f.processing = true
	f.message = MessageSaved
	if f.ProcessDelay > 0 {
		f.timers = append(f.timers, time.AfterFunc(f.ProcessDelay, f.CompleteProcessing))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "stopped",
		"message": "Processing started in background",
	})
}

func (f *FakeService) handleUpload(w http.ResponseWriter) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if code := f.commandCodes[PathUploadLast]; code != 0 {
		writeJSON(w, code, errorBody{Detail: "upload failed"})
		return
	}
	if f.report == "" {
		writeJSON(w, http.StatusOK, UploadResult{Message: MessageNoReport})
		return
	}
	if f.UploadLink == "" {
		writeJSON(w, http.StatusOK, UploadResult{Message: MessageNoUpload})
		return
	}
	writeJSON(w, http.StatusOK, UploadResult{Message: MessageUploaded, Link: f.UploadLink})
}

// CompleteProcessing publishes the report and returns the session to idle.
func (f *FakeService) CompleteProcessing() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.processing {
		return
	}
	if f.ReportFunc != nil {
		f.report = f.ReportFunc()
	} else {
		f.report = DefaultReport()
	}
	f.processing = false
	if f.UploadLink != "" {
		f.message = "Done! Saved to Drive: " + f.UploadLink
	} else {
		f.message = MessageLocalOnly
	}
}

// SetState overwrites the session state directly.
func (f *FakeService) SetState(recording, processing bool, message, report string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = recording
	f.processing = processing
	f.message = message
	f.report = report
}

// FailStatus makes GET /status answer with code. Zero restores normal answers.
func (f *FakeService) FailStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCode = code
}

// FailCommand makes the command at path answer with code. Zero restores it.
func (f *FakeService) FailCommand(path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commandCodes[path] = code
}

// SetRawStatus makes GET /status return body verbatim. Empty restores the
// generated body.
func (f *FakeService) SetRawStatus(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawStatus = body
}

// SetStatusDelay delays every GET /status answer by d.
func (f *FakeService) SetStatusDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusDelay = d
}

// Calls returns how many requests hit method and path, e.g. Calls("POST", "/start").
func (f *FakeService) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

// Close stops pending processing timers.
func (f *FakeService) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		t.Stop()
	}
	f.timers = nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
