package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thruflo/recpanel/internal/auth"
	"github.com/thruflo/recpanel/internal/config"
)

var passwordSave bool

// passwordReader reads hidden input. Tests replace it.
var passwordReader auth.PasswordReader = auth.StdinPasswordReader

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Set the browser panel password",
	Long: `Prompts for a password twice and prints its argon2id hash for
panel.password_hash. With --save the hash is written into
.recpanel/config.yaml in the working directory.`,
	Args: cobra.NoArgs,
	RunE: runPassword,
}

func init() {
	passwordCmd.Flags().BoolVar(&passwordSave, "save", false, "write the hash into .recpanel/config.yaml")
	rootCmd.AddCommand(passwordCmd)
}

func runPassword(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	password, err := auth.PromptAndConfirmPassword(out, passwordReader)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if !passwordSave {
		fmt.Fprintln(out, hash)
		fmt.Fprintln(out, "Set this as panel.password_hash in .recpanel/config.yaml")
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return err
	}
	cfg.Panel.PasswordHash = hash

	path, err := config.WriteConfig(cwd, cfg, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved panel password hash to %s\n", path)
	return nil
}
