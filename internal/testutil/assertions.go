package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thruflo/recpanel/internal/backend"
)

// AssertStatusEqual compares two statuses field by field, by value. A field
// must be absent in both or present with the same value in both.
func AssertStatusEqual(t *testing.T, expected, actual backend.RemoteStatus) {
	t.Helper()

	assertBoolPtr(t, "is_recording", expected.IsRecording, actual.IsRecording)
	assertBoolPtr(t, "is_processing", expected.IsProcessing, actual.IsProcessing)
	assertStringPtr(t, "message", expected.Message, actual.Message)
	assertStringPtr(t, "last_transcript", expected.LastTranscript, actual.LastTranscript)
}

// AssertFieldUnknown checks that f was absent from the payload.
func AssertFieldUnknown(t *testing.T, status backend.RemoteStatus, f backend.Field) {
	t.Helper()
	assert.False(t, status.Known(f), "field %d should be unknown", f)
}

// AssertRecording checks that status reports an active recording.
func AssertRecording(t *testing.T, status backend.RemoteStatus) {
	t.Helper()
	assert.True(t, status.Recording(), "expected is_recording=true")
}

// AssertIdle checks that status reports neither recording nor processing.
func AssertIdle(t *testing.T, status backend.RemoteStatus) {
	t.Helper()
	assert.False(t, status.Recording(), "expected is_recording=false")
	assert.False(t, status.Processing(), "expected is_processing=false")
}

func assertBoolPtr(t *testing.T, name string, expected, actual *bool) {
	t.Helper()
	if expected == nil || actual == nil {
		assert.Equal(t, expected == nil, actual == nil, "%s presence differs", name)
		return
	}
	assert.Equal(t, *expected, *actual, "%s differs", name)
}

func assertStringPtr(t *testing.T, name string, expected, actual *string) {
	t.Helper()
	if expected == nil || actual == nil {
		assert.Equal(t, expected == nil, actual == nil, "%s presence differs", name)
		return
	}
	assert.Equal(t, *expected, *actual, "%s differs", name)
}
