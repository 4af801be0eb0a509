package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/sessionlog"
	"github.com/gellab/graphlog/internal/store"
	"github.com/gellab/graphlog/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <session-folder-or-log>",
	Short: "View a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("not found: %s", path)
			}
			return err
		}

		logPath := path
		if info.IsDir() {
			logPath, err = store.FindLog(path)
			if err != nil {
				return err
			}
		}

		summary, events, err := loadSession(logPath)
		if err != nil {
			return err
		}

		if plainOutput {
			printSession(summary, events)
			return nil
		}
		return tui.Run(summary, events)
	},
}

func loadSession(logPath string) (store.Summary, []sessionlog.Line, error) {
	result, err := store.ListSessions(filepath.Dir(logPath))
	if err != nil {
		return store.Summary{}, nil, err
	}
	for _, s := range result.Summaries {
		if s.LogPath == logPath {
			events, err := store.ReadEvents(logPath)
			if err != nil {
				return store.Summary{}, nil, err
			}
			return s, events, nil
		}
	}
	return store.Summary{}, nil, fmt.Errorf("no session log found at %s", logPath)
}

// printSession writes a plain-text rendering to stdout.
func printSession(s store.Summary, events []sessionlog.Line) {
	fmt.Println("## Session")
	fmt.Printf("  User:      %s\n", s.User)
	fmt.Printf("  Folder:    %s\n", s.Path)
	if !s.Start.IsZero() {
		fmt.Printf("  Started:   %s\n", s.Start.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Last:      %s\n", s.End.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Events:    %d\n", s.EventCount)
	if len(s.Documents) > 0 {
		fmt.Printf("  Documents: %s\n", strings.Join(s.Documents, ", "))
	}
	fmt.Println()

	fmt.Println("## Events")
	if len(events) == 0 {
		fmt.Println("  (none)")
	} else {
		for _, ev := range events {
			fmt.Printf("  [%s] %-20s %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Action, ev.Detail)
		}
	}
	fmt.Println()
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
