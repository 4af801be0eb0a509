package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gellab/graphlog/internal/config"
	"github.com/gellab/graphlog/internal/remote"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure graphlog (re-run anytime to edit settings)",
	// Bypass the normal PersistentPreRunE so setup works before an identity exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(false)
	},
}

// runSetup runs the interactive setup wizard.
// If firstRun is true, a welcome message is shown.
func runSetup(firstRun bool) error {
	if firstRun {
		fmt.Println()
		fmt.Println("  Welcome to graphlog! Let's get you set up.")
	}

	r := bufio.NewReader(os.Stdin)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Printf("%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Printf("%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	// Load existing identity as defaults if present (edit mode).
	var existing config.User
	if config.UserExists() {
		if u, err := config.LoadUser(); err == nil {
			existing = *u
		}
	}

	fmt.Println()
	fmt.Println("  ┌─────────────────────────────────┐")
	fmt.Println("  │   graphlog · first-time setup   │")
	fmt.Println("  └─────────────────────────────────┘")
	fmt.Println()

	userID, err := ask("  Your user ID (shown in log lines)", existing.ID)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if userID == "" {
		return fmt.Errorf("a user ID is required")
	}

	fullName, err := ask("  Full name (optional)", existing.FullName)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	cfg, _ := config.LoadGlobal()
	serverDefault := ""
	if cfg != nil {
		serverDefault = cfg.ServerURL
	}
	serverURL, err := ask("  Collection server URL (optional, blank for local only)", serverDefault)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := config.SaveUser(&config.User{ID: userID, FullName: fullName}); err != nil {
		return fmt.Errorf("saving user identity: %w", err)
	}
	fmt.Println("  ✓ Identity saved.")

	// A registered server user brings a training period with them; otherwise
	// the dates are entered by hand.
	period := &config.Period{UserName: userID, ServerURL: serverURL}
	fetched := false
	if serverURL != "" {
		info, err := remote.New(serverURL).UserInfo(userID)
		switch {
		case err != nil:
			fmt.Printf("  ⚠ Server unreachable: %v\n", err)
			fmt.Println("    Recording will run locally; re-run 'graphlog setup' to retry.")
		case info.Registered:
			period.UserName = info.Username
			period.StartDate = info.StartDate
			period.EndDate = info.EndDate
			fetched = true
			fmt.Printf("  ✓ Registered on server: %s to %s\n", info.StartDate, info.EndDate)
		default:
			fmt.Println("  ⚠ Not registered on the server; enter the training period manually.")
		}
	}

	if !fetched {
		period.StartDate, err = ask("  Training period start (YYYY-MM-DD, blank for none)", period.StartDate)
		if err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
		if period.StartDate != "" {
			period.EndDate, err = ask("  Training period end (YYYY-MM-DD)", period.EndDate)
			if err != nil {
				return fmt.Errorf("setup cancelled: %w", err)
			}
		}
	}

	if period.StartDate != "" || period.ServerURL != "" {
		if period.StartDate != "" {
			if _, err := config.NewWindow(period.StartDate, period.EndDate); err != nil {
				fmt.Printf("  ⚠ %v\n", err)
				fmt.Println("    Saving anyway; recording will run without a window until fixed.")
			}
		}
		if err := config.SavePeriod(period); err != nil {
			return fmt.Errorf("saving training period: %w", err)
		}
		fmt.Println("  ✓ Training period saved.")
	}

	fmt.Println("  Setup complete. Run 'graphlog record' to begin recording.")
	fmt.Println()
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
