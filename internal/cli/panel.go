package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/config"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/panel"
	"github.com/thruflo/recpanel/internal/tui"
)

// defaultPanelLog is the log file used by the terminal panel when log.file is
// not set, relative to the working directory.
var defaultPanelLog = filepath.Join(config.DirName, "panel.log")

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive terminal panel",
	Long: `Shows the recording status and the last meeting report in the terminal
and lets you start and stop recordings and upload the report.

Keys:
  s        start recording (prompts for an optional meeting link)
  x        stop recording
  u        upload the last report
  1 2 3    summary, action items, transcript
  ↑ ↓      scroll, PgUp/PgDn by page
  r        refresh now
  q        quit

Logs go to log.file, or .recpanel/panel.log, so they do not disturb the
screen.`,
	Args: cobra.NoArgs,
	RunE: runPanel,
}

func init() {
	rootCmd.AddCommand(panelCmd)
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = defaultPanelLog
	}
	closeLog, err := redirectLogs(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := logging.Default()
	client := newClient(cfg)
	store := panel.NewStore(markersFor(cfg))
	loop := panel.NewSyncLoop(client, store, cfg.Poll.Interval(),
		panel.WithLogger(logger.With("component", "sync")))
	ctrl := panel.NewController(client, panel.QuietBrowserOpener(), logger)

	out := cmd.OutOrStdout()
	app := tui.NewApp(tui.NewTUI(out), store, loop, ctrl, tui.NewNotifier(out), logger)

	err = app.Run(commandContext(cmd))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// redirectLogs sends the default logger to the file at path, creating its
// directory. The returned function restores stderr and closes the file.
func redirectLogs(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logging.SetOutput(f)
	return func() {
		logging.Default().Sync()
		logging.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
