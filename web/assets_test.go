package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(Embedded(), "index.html")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	page := string(data)
	for _, want := range []string{"/api/state", "/api/ws", "/api/start", "/api/stop", "/api/upload", "/api/auth"} {
		assert.True(t, strings.Contains(page, want), "page should call %s", want)
	}
}

func TestAssets_DevOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("dev page"), 0o644))
	t.Setenv(DevDirEnv, dir)

	data, err := fs.ReadFile(Assets(), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "dev page", string(data))
}

func TestAssets_MissingDevDirFallsBack(t *testing.T) {
	t.Setenv(DevDirEnv, "/nonexistent/path")

	var files int
	err := fs.WalkDir(Assets(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Positive(t, files)
}
