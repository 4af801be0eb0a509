package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored user identity and training period",
	// Works even when no identity exists, so skip the first-run check.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.UserExists() {
			cmd.Println("no user identity stored")
			return nil
		}

		if err := config.DeleteUser(); err != nil {
			return err
		}

		// The training period belongs to the identity; drop it too.
		if p, err := config.PeriodPath(); err == nil {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: removing training period: %v\n", err)
			}
		}

		cmd.Println("Logged out. Run 'graphlog setup' to configure a new identity.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
