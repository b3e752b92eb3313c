package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/bilirec/internal/tui"
)

// Version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command. Without a subcommand it starts the
// TUI on a terminal and prints the feed otherwise.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bilirec",
		Short:         "Browse the Bilibili homepage feeds from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return runFeed(cmd, feedOptions{count: 20, format: "text"})
			}
			return runTUI()
		},
	}
	rootCmd.SetVersionTemplate("bilirec version {{.Version}}\n")

	rootCmd.AddCommand(newFeedCmd())
	rootCmd.AddCommand(newTabsCmd())
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())

	return rootCmd
}

func runTUI() error {
	toasts := make(chan string, 16)
	a, err := newApp(tui.NewChannelNotifier(toasts))
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(a.ctrl, a.settings, a.playback, toasts, a.logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
