package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeService_Lifecycle(t *testing.T) {
	t.Parallel()

	fake := NewFakeService()
	fake.UploadLink = "https://drive.example/doc/9"
	server := httptest.NewServer(fake)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	status, err := client.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, InitialMessage, status.MessageText())

	require.NoError(t, client.Start(ctx))
	require.NoError(t, client.Stop(ctx))

	fake.CompleteProcessing()

	status, err = client.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Processing())
	assert.Equal(t, DefaultReport(), status.ReportText())
	assert.Equal(t, "Done! Saved to Drive: https://drive.example/doc/9", status.MessageText())

	assert.Equal(t, 2, fake.Calls(http.MethodGet, PathStatus))
	assert.Equal(t, 1, fake.Calls(http.MethodPost, PathStart))
	assert.Equal(t, 1, fake.Calls(http.MethodPost, PathStop))
}

func TestFakeService_ProcessDelay(t *testing.T) {
	t.Parallel()

	fake := NewFakeService()
	fake.ProcessDelay = 20 * time.Millisecond
	fake.ReportFunc = func() string { return "## Full Transcript\nhi" }
	defer fake.Close()
	server := httptest.NewServer(fake)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	require.NoError(t, client.Start(ctx))
	require.NoError(t, client.Stop(ctx))

	require.Eventually(t, func() bool {
		status, err := client.GetStatus(ctx)
		return err == nil && status.HasReport()
	}, 2*time.Second, 10*time.Millisecond)

	status, err := client.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, MessageLocalOnly, status.MessageText())
	assert.Equal(t, "## Full Transcript\nhi", status.ReportText())
}

func TestFakeService_CompleteProcessingWhenIdle(t *testing.T) {
	t.Parallel()

	fake := NewFakeService()
	fake.CompleteProcessing()

	server := httptest.NewServer(fake)
	defer server.Close()

	status, err := NewClient(server.URL).GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.HasReport())
}

func TestFakeService_FailCommand(t *testing.T) {
	t.Parallel()

	fake := NewFakeService()
	fake.FailCommand(PathUploadLast, http.StatusInternalServerError)
	server := httptest.NewServer(fake)
	defer server.Close()

	_, err := NewClient(server.URL).UploadLast(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)

	fake.FailCommand(PathUploadLast, 0)
	result, err := NewClient(server.URL).UploadLast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MessageNoReport, result.Message)
}

func TestFakeService_UnknownRoute(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewFakeService().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
