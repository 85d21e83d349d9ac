package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/panel"
)

var startURL string

// meetingOpener opens meeting links for the start command. Tests replace it.
var meetingOpener = panel.BrowserOpener

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recording",
	Long: `Asks the recording service to start recording. With --url the meeting
link is opened in the browser first.

Example:
  recpanel start
  recpanel start --url https://meet.google.com/abc-defg-hij`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop recording and process it",
	Long: `Asks the recording service to stop recording. The service then
transcribes the recording and builds the meeting report in the background;
use "recpanel status" or "recpanel watch" to follow it.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload the last meeting report",
	Args:  cobra.NoArgs,
	RunE:  runUpload,
}

func init() {
	startCmd.Flags().StringVarP(&startURL, "url", "u", "", "meeting link to open before recording")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(uploadCmd)
}

func newController(opener panel.URLOpener) (*panel.Controller, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return panel.NewController(newClient(cfg), opener, logging.Default()), nil
}

func runStart(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(meetingOpener())
	if err != nil {
		return err
	}
	if err := ctrl.StartRecording(commandContext(cmd), startURL); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Recording started")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(nil)
	if err != nil {
		return err
	}
	if err := ctrl.StopRecording(commandContext(cmd)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Recording stopped, processing started")
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(nil)
	if err != nil {
		return err
	}
	msg, err := ctrl.UploadLast(commandContext(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
