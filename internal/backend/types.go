package backend

// Field identifies one field of the status payload.
type Field int

const (
	FieldIsRecording Field = iota
	FieldIsProcessing
	FieldMessage
	FieldLastTranscript
)

// RemoteStatus is the body of GET /status. Every field is a pointer so that a
// field the backend omitted stays absent (unknown) instead of silently taking
// a zero value.
type RemoteStatus struct {
	IsRecording    *bool   `json:"is_recording,omitempty"`
	IsProcessing   *bool   `json:"is_processing,omitempty"`
	Message        *string `json:"message,omitempty"`
	LastTranscript *string `json:"last_transcript,omitempty"`
}

// InitialMessage is the message shown before the first successful poll.
const InitialMessage = "Ready"

// InitialStatus returns the status assumed at startup.
func InitialStatus() RemoteStatus {
	return RemoteStatus{
		IsRecording:    Bool(false),
		IsProcessing:   Bool(false),
		Message:        String(InitialMessage),
		LastTranscript: String(""),
	}
}

// Recording reports is_recording, treating unknown as false.
func (s RemoteStatus) Recording() bool {
	return s.IsRecording != nil && *s.IsRecording
}

// Processing reports is_processing, treating unknown as false.
func (s RemoteStatus) Processing() bool {
	return s.IsProcessing != nil && *s.IsProcessing
}

// MessageText returns the message, or "" when unknown.
func (s RemoteStatus) MessageText() string {
	if s.Message == nil {
		return ""
	}
	return *s.Message
}

// ReportText returns the raw report, or "" when unknown.
func (s RemoteStatus) ReportText() string {
	if s.LastTranscript == nil {
		return ""
	}
	return *s.LastTranscript
}

// HasReport reports whether a non-empty report is present.
func (s RemoteStatus) HasReport() bool {
	return s.ReportText() != ""
}

// Known reports whether f was present in the payload.
func (s RemoteStatus) Known(f Field) bool {
	switch f {
	case FieldIsRecording:
		return s.IsRecording != nil
	case FieldIsProcessing:
		return s.IsProcessing != nil
	case FieldMessage:
		return s.Message != nil
	case FieldLastTranscript:
		return s.LastTranscript != nil
	default:
		return false
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }

// UploadResult is the body of POST /upload_last.
type UploadResult struct {
	Link    string `json:"link,omitempty"`
	Message string `json:"message,omitempty"`
}

// errorBody is the error shape the backend returns on rejected commands.
type errorBody struct {
	Detail string `json:"detail"`
}
