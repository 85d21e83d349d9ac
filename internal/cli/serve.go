package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/panel"
	"github.com/thruflo/recpanel/internal/server"
)

var (
	servePort int
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser panel",
	Long: `Serves the browser panel on panel.port (or --port). The panel polls the
recording service in the background and pushes every change to open pages.

When panel.password_hash is set (see "recpanel password") the page asks for
the password first. Without it anyone who can reach the port can control
recordings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on, overrides panel.port")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the panel in the browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Default()
	client := newClient(cfg)
	store := panel.NewStore(markersFor(cfg))
	loop := panel.NewSyncLoop(client, store, cfg.Poll.Interval(),
		panel.WithLogger(logger.With("component", "sync")))
	// The page opens meeting links itself.
	ctrl := panel.NewController(client, panel.NopOpener(), logger)

	srvCfg := server.ConfigFrom(cfg.Panel)
	if servePort != 0 {
		srvCfg.Port = servePort
	}
	srvCfg.Logger = logger

	srv, err := server.NewServer(srvCfg, store, ctrl, loop)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	handle := loop.Start(ctx)
	defer handle.Stop()
	go loop.PollOnce(ctx)

	url := fmt.Sprintf("http://localhost:%d", srv.Port())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Panel running on %s (Ctrl+C to stop)\n", url)
	if !srv.AuthRequired() {
		fmt.Fprintln(out, "Warning: no panel password set; run \"recpanel password --save\" to require one")
	}

	if serveOpen {
		if err := panel.BrowserOpener().OpenURL(url); err != nil {
			logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	err = srv.Start(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "Shutting down...")
		return nil
	}
	return err
}
