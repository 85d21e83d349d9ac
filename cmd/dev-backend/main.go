// Stand-in recording service for working on the panels without a microphone.
// Run with: go run ./cmd/dev-backend --process-delay 5s --upload-link https://drive.example/d/1
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/logging"
)

var (
	addr         string
	processDelay time.Duration
	uploadLink   string
	reportFile   string
)

var rootCmd = &cobra.Command{
	Use:   "dev-backend",
	Short: "Serve a fake recording service",
	Long: `Serves GET /status, POST /start, POST /stop and POST /upload_last with the
recording service's state machine. After a stop the fake stays in processing
for --process-delay and then publishes a report.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "localhost:8000", "listen address")
	rootCmd.Flags().DurationVar(&processDelay, "process-delay", 5*time.Second, "time spent processing after stop")
	rootCmd.Flags().StringVar(&uploadLink, "upload-link", "", "link returned by successful uploads")
	rootCmd.Flags().StringVar(&reportFile, "report", "", "markdown file published as the report (default: built-in sample)")
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.New()
	logger.SetLevel(logging.LevelInfo)

	fake := backend.NewFakeService()
	fake.ProcessDelay = processDelay
	fake.UploadLink = uploadLink
	if reportFile != "" {
		data, err := os.ReadFile(reportFile)
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}
		fake.ReportFunc = func() string { return string(data) }
	}
	defer fake.Close()

	srv := &http.Server{
		Addr:    addr,
		Handler: logRequests(logger, fake),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Fake recording service on http://%s\n", addr)
	if reportFile == "" {
		// The built-in report uses the service's decorated headings.
		fmt.Printf("Try: recpanel --base-url http://%s init --markers decorated && recpanel panel\n", addr)
	} else {
		fmt.Printf("Try: recpanel --base-url http://%s panel\n", addr)
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func logRequests(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request", "method", r.Method, "path", r.URL.Path, "request_id", r.Header.Get(backend.RequestIDHeader))
		next.ServeHTTP(w, r)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
