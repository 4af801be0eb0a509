package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/config"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeUser holds the stored user identity, nil when not set up.
var activeUser *config.User

var rootCmd = &cobra.Command{
	Use:   "graphlog",
	Short: "Record and inspect parametric editor session activity",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First run: identity missing → run the setup wizard automatically,
		// but only when stdin is an interactive terminal.
		if !config.UserExists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Println()
				fmt.Println("  Welcome to graphlog! Looks like this is your first time.")
				if err := runSetup(true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue without an identity;
			// commands that need one report it themselves.
		}

		if config.UserExists() {
			u, err := config.LoadUser()
			if err != nil {
				return fmt.Errorf("loading user identity: %w", err)
			}
			activeUser = u
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetUser returns the stored user identity, or nil.
func GetUser() *config.User {
	return activeUser
}
