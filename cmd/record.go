package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/config"
	"github.com/gellab/graphlog/internal/host"
	"github.com/gellab/graphlog/internal/recorder"
	"github.com/gellab/graphlog/internal/remote"
	"github.com/gellab/graphlog/internal/sessionlog"
)

var (
	recordRoot   string
	recordServer string
	recordUser   string
	recordWatch  bool
)

var recordCmd = &cobra.Command{
	Use:   "record [stream-file]",
	Short: "Record a session from a host notification stream (JSONL; '-' or no arg reads stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := recordUser
		if userID == "" {
			if u := GetUser(); u != nil {
				userID = u.ID
			}
		}
		if userID == "" {
			return fmt.Errorf("no user identity — run 'graphlog setup' or pass --user")
		}

		root := recordRoot
		if root == "" {
			var err error
			root, err = GetConfig().ResolveLogRoot()
			if err != nil {
				return fmt.Errorf("resolving log root: %w", err)
			}
		}

		serverURL := recordServer
		if serverURL == "" {
			serverURL = GetConfig().ServerURL
		}

		var warnings []string
		var sink sessionlog.Sink
		var window *config.Window

		// The server's registration record is the preferred window source; an
		// unreachable server degrades to local-only recording, never to no
		// recording at all.
		if serverURL != "" {
			client := remote.New(serverURL)
			sink = client
			if info, err := client.UserInfo(userID); err != nil {
				warnings = append(warnings, "server unreachable, recording locally: "+err.Error())
			} else if info.Registered {
				w, err := config.NewWindow(info.StartDate, info.EndDate)
				if err != nil {
					warnings = append(warnings, "ignoring server window: "+err.Error())
				} else {
					window = w
				}
			}
		}

		// Fall back to the local training period file.
		if window == nil {
			period, err := config.LoadPeriod()
			if err != nil {
				warnings = append(warnings, "ignoring training period: "+err.Error())
			} else if period != nil {
				w, err := period.Window()
				if err != nil {
					warnings = append(warnings, "ignoring training period: "+err.Error())
				} else {
					window = w
				}
			}
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening stream file: %w", err)
			}
			defer f.Close()
			in = f
		}

		rec := recorder.New(recorder.Options{
			Root:        root,
			User:        userID,
			Window:      window,
			Sink:        sink,
			DelayWindow: time.Duration(GetConfig().DelayWindowMS) * time.Millisecond,
			Park:        time.Duration(GetConfig().WriterParkMS) * time.Millisecond,
			WatchSaves:  recordWatch,
		})

		var last time.Time
		decodeErr := host.Decode(in, func(n host.Notification) error {
			last = n.Time
			return rec.HandleNotification(n)
		})

		stopAt := last
		if stopAt.IsZero() {
			stopAt = time.Now()
		}
		if err := rec.Stop(stopAt); err != nil {
			return fmt.Errorf("stopping recorder: %w", err)
		}

		warnings = append(warnings, rec.Warnings()...)
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		if decodeErr != nil {
			return decodeErr
		}

		dir := rec.SessionDir()
		if dir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No events observed; nothing recorded.")
			return nil
		}
		if _, err := os.Stat(dir); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Session produced no events; artifacts cleaned up.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session recorded: %s\n", dir)
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordRoot, "root", "", "Log root directory (overrides config)")
	recordCmd.Flags().StringVar(&recordServer, "server", "", "Collection server URL (overrides config)")
	recordCmd.Flags().StringVar(&recordUser, "user", "", "User ID (overrides stored identity)")
	recordCmd.Flags().BoolVar(&recordWatch, "watch-saves", false, "Watch the document file for saves between cycles")
	rootCmd.AddCommand(recordCmd)
}
