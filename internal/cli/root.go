package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/config"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/report"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags.
var (
	configPath string
	baseURL    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "recpanel",
	Short: "Control panel for a meeting recording service",
	Long: `recpanel drives a meeting recording and transcription service.

It polls the service for its recording status, starts and stops recordings,
and shows the resulting meeting report split into summary, action items and
transcript, either in the terminal or in a local browser panel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("recpanel version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default .recpanel/config.yaml in the working directory)")
	pf.StringVar(&baseURL, "base-url", "", "recording service URL, overrides backend.base_url")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides log.level")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfigFile(configPath, true)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", werr)
		}
		cfg, err = config.LoadConfig(cwd)
	}
	if err != nil {
		return nil, err
	}

	if baseURL != "" {
		cfg.Backend.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(level)

	return cfg, nil
}

// newClient creates a recording service client from cfg.
func newClient(cfg *config.Config) *backend.Client {
	opts := []backend.ClientOption{backend.WithUserAgent("recpanel/" + Version)}
	if cfg.Backend.AuthToken != "" {
		opts = append(opts, backend.WithAuthToken(cfg.Backend.AuthToken))
	}
	return backend.NewClient(cfg.Backend.BaseURL, opts...)
}

func markersFor(cfg *config.Config) report.Markers {
	return report.MarkersByName(cfg.Report.Markers)
}

// commandContext returns the command's context, or a background context when
// the command runs outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
