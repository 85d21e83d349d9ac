package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/panel"
	"github.com/thruflo/recpanel/internal/report"
)

var (
	statusSection string
	statusJSON    bool
)

// Report sections selectable with --section.
const (
	sectionSummary    = "summary"
	sectionActions    = "actions"
	sectionTranscript = "transcript"
	sectionAll        = "all"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recording status and the last meeting report",
	Long: `Polls the recording service once and prints the recording phase, the
service's message and the sections of the last meeting report.

Example:
  recpanel status
  recpanel status --section actions
  recpanel status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusSection, "section", "s", sectionAll, "report section to print: summary, actions, transcript or all")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the full snapshot as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	switch statusSection {
	case sectionSummary, sectionActions, sectionTranscript, sectionAll:
	default:
		return fmt.Errorf("unknown section %q (want summary, actions, transcript or all)", statusSection)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)
	status, err := client.GetStatus(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	store := panel.NewStore(markersFor(cfg))
	store.ReplaceStatus(*status, time.Now())
	snap := store.Snapshot()

	out := cmd.OutOrStdout()
	if statusJSON {
		return writeSnapshotJSON(out, snap)
	}
	printSnapshot(out, snap, statusSection)
	return nil
}

// snapshotJSON adds the derived action list to a snapshot.
type snapshotJSON struct {
	panel.Snapshot
	ActionItems []string `json:"action_items"`
}

func writeSnapshotJSON(out io.Writer, snap panel.Snapshot) error {
	items := snap.ActionItems()
	if items == nil {
		items = []string{}
	}
	data, err := json.MarshalIndent(snapshotJSON{Snapshot: snap, ActionItems: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// printSnapshot writes a human readable view of snap, limited to section.
func printSnapshot(out io.Writer, snap panel.Snapshot, section string) {
	fmt.Fprintf(out, "Phase:   %s\n", snap.Phase.Label())
	fmt.Fprintf(out, "Message: %s\n", snap.Status.MessageText())

	if section == sectionAll || section == sectionSummary {
		printSection(out, "Summary", snap.Sections.Summary)
	}
	if section == sectionAll || section == sectionActions {
		printSection(out, "Action Items", actionText(snap))
	}
	if section == sectionAll || section == sectionTranscript {
		printSection(out, "Transcript", snap.Sections.Transcript)
	}
}

func printSection(out io.Writer, title, body string) {
	fmt.Fprintf(out, "\n%s\n%s\n%s\n", title, strings.Repeat("-", len(title)), body)
}

func actionText(snap panel.Snapshot) string {
	if !snap.CanUpload() {
		// Placeholder text, not a list.
		return snap.Sections.ActionItems
	}
	if report.NoExplicitActions(snap.Sections.ActionItems) {
		return report.EmptyActionItems
	}
	items := snap.ActionItems()
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
