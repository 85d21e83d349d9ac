package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/config"
)

// SetupTestDir creates a temporary directory with a .recpanel/config.yaml
// holding default settings pointed at baseURL. Returns the directory path.
func SetupTestDir(t *testing.T, baseURL string) string {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := config.DefaultConfig()
	if baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	cfg.Poll.IntervalMs = 50
	_, err := config.WriteConfig(tmpDir, &cfg, false)
	require.NoError(t, err)

	return tmpDir
}

// NewFakeBackend starts an in-process recording service. The server and any
// pending processing timers are shut down when the test ends.
func NewFakeBackend(t *testing.T) (*backend.FakeService, string) {
	t.Helper()

	fake := backend.NewFakeService()
	server := httptest.NewServer(fake)
	t.Cleanup(func() {
		fake.Close()
		server.Close()
	})

	return fake, server.URL
}

// MustMarshalJSON marshals v to JSON or fails the test.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// MustUnmarshalJSON unmarshals JSON into v or fails the test.
func MustUnmarshalJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v))
}

// WriteTestFile writes content to basePath/relativePath, creating parent
// directories as needed.
func WriteTestFile(t *testing.T, basePath, relativePath string, content []byte) {
	t.Helper()

	fullPath := filepath.Join(basePath, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, content, 0644))
}
