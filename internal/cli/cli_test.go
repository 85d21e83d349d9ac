package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/recpanel/internal/config"
	"github.com/thruflo/recpanel/internal/testutil"
)

// resetFlags restores every flag variable to its default; cobra keeps values
// between Execute calls.
func resetFlags() {
	configPath, baseURL, logLevel = "", "", ""
	initForce, initMarkers = false, config.DefaultMarkers
	statusSection, statusJSON = sectionAll, false
	startURL = ""
	servePort, serveOpen = 0, false
	passwordSave = false
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	// Subcommands keep the context of their first run unless it is replaced.
	ctx := testutil.ShortContext(t)
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

// chdir changes into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
}

// setupProject creates a project directory configured for baseURL and
// changes into it.
func setupProject(t *testing.T, baseURL string) string {
	t.Helper()
	dir := testutil.SetupTestDir(t, baseURL)
	chdir(t, dir)
	return dir
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "expected %s to exist", filepath.Base(path))
}
