package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/store"
)

var statusRoot string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent recorded session",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := statusRoot
		if root == "" {
			var err error
			root, err = GetConfig().ResolveLogRoot()
			if err != nil {
				return fmt.Errorf("resolving log root: %w", err)
			}
		}

		result, err := store.ListSessions(root)
		if err != nil {
			return err
		}
		if len(result.Summaries) == 0 {
			cmd.Println("no sessions recorded")
			return nil
		}

		s := result.Summaries[0]
		cmd.Printf("Session: %s\n", s.ID)
		cmd.Printf("User: %s\n", s.User)
		if !s.Start.IsZero() {
			cmd.Printf("Started: %s\n", s.Start.Format(time.RFC3339))
			cmd.Printf("Duration: %s\n", s.End.Sub(s.Start).Round(time.Second).String())
		}
		cmd.Printf("Events: %d\n", s.EventCount)
		if len(s.Documents) > 0 {
			cmd.Printf("Documents: %s\n", strings.Join(s.Documents, ", "))
		}
		cmd.Printf("Log: %s\n", s.LogPath)

		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusRoot, "root", "", "Log root directory (overrides config)")
	rootCmd.AddCommand(statusCmd)
}
