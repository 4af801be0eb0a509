package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/store"
)

var sessionsRoot string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := sessionsRoot
		if root == "" {
			var err error
			root, err = GetConfig().ResolveLogRoot()
			if err != nil {
				return fmt.Errorf("resolving log root: %w", err)
			}
		}
		if _, err := os.Stat(root); os.IsNotExist(err) {
			cmd.Println("no sessions recorded")
			return nil
		}

		result, err := store.ListSessions(root)
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		if f, ok := cmd.OutOrStdout().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			tw.SetStyle(table.StyleRounded)
		} else {
			tw.SetStyle(table.StyleDefault)
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
		})
		tw.AppendHeader(table.Row{"Session", "User", "Started", "Events", "Documents"})

		for _, s := range result.Summaries {
			started := "-"
			if !s.Start.IsZero() {
				started = s.Start.Format("2006-01-02 15:04:05")
			}
			tw.AppendRow(table.Row{s.ID, s.User, started, s.EventCount, strings.Join(s.Documents, ", ")})
		}
		if len(result.Summaries) == 0 {
			tw.AppendRow(table.Row{"(no sessions)", "-", "-", 0, "-"})
		}
		tw.Render()

		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsRoot, "root", "", "Log root directory (overrides config)")
	rootCmd.AddCommand(sessionsCmd)
}
