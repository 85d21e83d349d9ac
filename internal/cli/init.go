package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/config"
)

var (
	initForce   bool
	initMarkers string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .recpanel/config.yaml with default settings",
	Long: `Creates .recpanel/config.yaml in the working directory with the default
settings. --base-url, when given, is written into the file.

--markers selects the report headings to split on: "plain" (## Executive
Summary) or "decorated" (## 📝 Executive Summary, as the recording service
and dev-backend emit them).

An existing file is left alone unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	initCmd.Flags().StringVar(&initMarkers, "markers", config.DefaultMarkers, "report heading style: plain or decorated")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg := config.DefaultConfig()
	if baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	cfg.Report.Markers = initMarkers
	if err := config.ValidateConfig(&cfg); err != nil {
		return err
	}

	path, err := config.WriteConfig(cwd, &cfg, initForce)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
