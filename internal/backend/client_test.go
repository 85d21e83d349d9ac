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

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("trims trailing slash from URL", func(t *testing.T) {
		t.Parallel()

		client := NewClient("http://localhost:8000/")
		assert.Equal(t, "http://localhost:8000", client.BaseURL())
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		custom := &http.Client{Timeout: 3 * time.Second}
		client := NewClient("http://localhost:8000",
			WithAuthToken("tok"),
			WithHTTPClient(custom),
			WithUserAgent("recpanel-test"),
		)

		assert.Equal(t, "tok", client.authToken)
		assert.Equal(t, custom, client.httpClient)
		assert.Equal(t, "recpanel-test", client.userAgent)
	})
}

func TestClientGetStatus(t *testing.T) {
	t.Parallel()

	t.Run("decodes full payload", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.SetState(true, false, MessageRecording, "")
		server := httptest.NewServer(fake)
		defer server.Close()

		status, err := NewClient(server.URL).GetStatus(context.Background())
		require.NoError(t, err)

		assert.True(t, status.Recording())
		assert.False(t, status.Processing())
		assert.Equal(t, MessageRecording, status.MessageText())
		assert.True(t, status.Known(FieldLastTranscript))
		assert.False(t, status.HasReport())
	})

	t.Run("absent fields stay unknown", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.SetRawStatus(`{"is_recording": true}`)
		server := httptest.NewServer(fake)
		defer server.Close()

		status, err := NewClient(server.URL).GetStatus(context.Background())
		require.NoError(t, err)

		assert.True(t, status.Known(FieldIsRecording))
		assert.False(t, status.Known(FieldIsProcessing))
		assert.False(t, status.Known(FieldMessage))
		assert.False(t, status.Known(FieldLastTranscript))
		assert.Equal(t, "", status.MessageText())
	})

	t.Run("sends request headers", func(t *testing.T) {
		t.Parallel()

		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, WithAuthToken("secret")).GetStatus(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "Bearer secret", got.Get("Authorization"))
		assert.Equal(t, "application/json", got.Get("Accept"))
		assert.NotEmpty(t, got.Get(RequestIDHeader))
	})

	t.Run("non-2xx is a status error", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.FailStatus(http.StatusServiceUnavailable)
		server := httptest.NewServer(fake)
		defer server.Close()

		_, err := NewClient(server.URL).GetStatus(context.Background())
		require.Error(t, err)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusServiceUnavailable, se.Code)
		assert.Contains(t, err.Error(), "server returned status 503")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.SetRawStatus(`not json`)
		server := httptest.NewServer(fake)
		defer server.Close()

		_, err := NewClient(server.URL).GetStatus(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode status")
	})

	t.Run("unreachable backend", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewClient(url).GetStatus(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GET /status failed")
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.SetStatusDelay(5 * time.Second)
		server := httptest.NewServer(fake)
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewClient(server.URL).GetStatus(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClientCommands(t *testing.T) {
	t.Parallel()

	t.Run("start then stop", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		server := httptest.NewServer(fake)
		defer server.Close()
		client := NewClient(server.URL)

		require.NoError(t, client.Start(context.Background()))
		require.NoError(t, client.Stop(context.Background()))

		status, err := client.GetStatus(context.Background())
		require.NoError(t, err)
		assert.False(t, status.Recording())
		assert.True(t, status.Processing())
		assert.Equal(t, MessageSaved, status.MessageText())
	})

	t.Run("rejected start carries detail", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.SetState(true, false, MessageRecording, "")
		server := httptest.NewServer(fake)
		defer server.Close()

		err := NewClient(server.URL).Start(context.Background())
		require.Error(t, err)

		detail, ok := DetailOf(err)
		assert.True(t, ok)
		assert.Equal(t, DetailAlreadyRec, detail)
	})

	t.Run("rejected stop carries detail", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		server := httptest.NewServer(fake)
		defer server.Close()

		err := NewClient(server.URL).Stop(context.Background())
		detail, ok := DetailOf(err)
		assert.True(t, ok)
		assert.Equal(t, DetailNotRecoding, detail)
	})

	t.Run("upload with link", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		fake.UploadLink = "https://drive.example/doc/1"
		fake.SetState(false, false, MessageLocalOnly, DefaultReport())
		server := httptest.NewServer(fake)
		defer server.Close()

		result, err := NewClient(server.URL).UploadLast(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://drive.example/doc/1", result.Link)
	})

	t.Run("upload without report", func(t *testing.T) {
		t.Parallel()

		fake := NewFakeService()
		server := httptest.NewServer(fake)
		defer server.Close()

		result, err := NewClient(server.URL).UploadLast(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Link)
		assert.Equal(t, MessageNoReport, result.Message)
	})
}

func TestParseDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail": "Already recording"}`, "Already recording"},
		{"structured detail", `{"detail": [ {"loc": ["body"]} ]}`, `[{"loc":["body"]}]`},
		{"null detail", `{"detail": null}`, ""},
		{"no detail", `{"error": "x"}`, ""},
		{"not json", `Internal Server Error`, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestDetailOf(t *testing.T) {
	t.Parallel()

	_, ok := DetailOf(assert.AnError)
	assert.False(t, ok)

	_, ok = DetailOf(&StatusError{Code: 500, Body: "boom"})
	assert.False(t, ok)

	detail, ok := DetailOf(&StatusError{Code: 400, Detail: "Not recording"})
	assert.True(t, ok)
	assert.Equal(t, "Not recording", detail)
}
