package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/config"
)

func TestSampleStatuses(t *testing.T) {
	AssertIdle(t, StatusIdle())
	AssertRecording(t, StatusRecording())
	assert.True(t, StatusProcessing().Processing())
	assert.False(t, StatusProcessing().Recording())

	withReport := StatusWithReport(SampleReportPlain)
	AssertIdle(t, withReport)
	assert.True(t, withReport.HasReport())
}

func TestSampleReports(t *testing.T) {
	assert.Contains(t, SampleReportPlain, "## Executive Summary")
	assert.Contains(t, SampleReportDecorated, "## 📝 Executive Summary")
	assert.Contains(t, SampleReportPlain, SampleSummary)
	assert.Contains(t, SampleReportDecorated, SampleSummary)
	assert.Len(t, SampleActionItems(), 2)
}

func TestSetupTestDir(t *testing.T) {
	dir := SetupTestDir(t, "http://127.0.0.1:9999")

	_, err := os.Stat(filepath.Join(dir, config.DirName, config.FileName))
	require.NoError(t, err)

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Backend.BaseURL)
	assert.Equal(t, 50, cfg.Poll.IntervalMs)
}

func TestNewFakeBackend(t *testing.T) {
	fake, url := NewFakeBackend(t)
	fake.SetState(true, false, backend.MessageRecording, "")

	status, err := backend.NewClient(url).GetStatus(context.Background())
	require.NoError(t, err)
	AssertStatusEqual(t, StatusRecording(), *status)
}

func TestAssertStatusEqual(t *testing.T) {
	AssertStatusEqual(t, StatusIdle(), backend.InitialStatus())
	AssertStatusEqual(t, backend.RemoteStatus{}, backend.RemoteStatus{})
}

func TestAssertFieldUnknown(t *testing.T) {
	status := backend.RemoteStatus{IsRecording: backend.Bool(true)}
	AssertFieldUnknown(t, status, backend.FieldMessage)
	AssertFieldUnknown(t, status, backend.FieldLastTranscript)
}

func TestMustMarshalJSON(t *testing.T) {
	data := MustMarshalJSON(t, map[string]string{"key": "value"})
	assert.JSONEq(t, `{"key":"value"}`, string(data))

	var out map[string]string
	MustUnmarshalJSON(t, data, &out)
	assert.Equal(t, "value", out["key"])
}

func TestWriteTestFile(t *testing.T) {
	tmpDir := t.TempDir()
	WriteTestFile(t, tmpDir, "sub/dir/file.txt", []byte("content"))

	data, err := os.ReadFile(filepath.Join(tmpDir, "sub", "dir", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestSafeBuffer(t *testing.T) {
	var buf SafeBuffer
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.Write([]byte("x"))
		}()
	}
	wg.Wait()

	assert.Equal(t, "xxxxxxxxxx", buf.String())
	buf.Reset()
	assert.Empty(t, buf.String())
}
