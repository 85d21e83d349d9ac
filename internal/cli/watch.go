package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/panel"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print recording phase and message changes until interrupted",
	Long: `Polls the recording service at poll.interval_ms and prints a line
whenever the recording phase or the service's message changes, when a new
meeting report arrives, and when the service becomes unreachable or
reachable again. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := panel.NewStore(markersFor(cfg))
	loop := panel.NewSyncLoop(newClient(cfg), store, cfg.Poll.Interval(),
		panel.WithLogger(logging.Default().With("component", "sync")))

	err = watch(ctx, store, loop, &watchPrinter{out: cmd.OutOrStdout(), now: time.Now})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watch prints changes of store until ctx ends.
func watch(ctx context.Context, store *panel.Store, loop *panel.SyncLoop, p *watchPrinter) error {
	changes, unsubscribe := store.Subscribe()
	defer unsubscribe()

	handle := loop.Start(ctx)
	defer handle.Stop()

	go loop.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			p.observe(store.Snapshot())
		}
	}
}

// watchPrinter turns successive snapshots into one line per change.
type watchPrinter struct {
	out io.Writer
	now func() time.Time

	seen    bool
	phase   panel.Phase
	message string
	report  string
	failing bool
}

func (p *watchPrinter) observe(snap panel.Snapshot) {
	if snap.LastError != "" {
		if !p.failing {
			p.printf("backend unreachable: %s", snap.LastError)
			p.failing = true
		}
		return
	}
	if p.failing {
		p.printf("backend reachable again")
		p.failing = false
	}
	if snap.Seq == 0 {
		return
	}

	if !p.seen || snap.Phase != p.phase {
		p.printf("%s", snap.Phase.Label())
	}
	if msg := snap.Status.MessageText(); !p.seen || msg != p.message {
		p.printf("message: %s", msg)
		p.message = msg
	}
	if snap.Status.Known(backend.FieldLastTranscript) {
		text := snap.Status.ReportText()
		if p.seen && text != "" && text != p.report {
			p.printf("report ready: %d action items", len(snap.ActionItems()))
		}
		p.report = text
	}

	p.phase = snap.Phase
	p.seen = true
}

func (p *watchPrinter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s  %s\n", p.now().Format("15:04:05"), fmt.Sprintf(format, args...))
}
