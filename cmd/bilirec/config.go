package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/adapter/source"
)

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file:  %s\n", adapter.ConfigFile())
			fmt.Fprintf(out, "logged in:    %t\n", cfg.IsLoggedIn())
			fmt.Fprintf(out, "SESSDATA:     %s\n", mask(cfg.Auth.SessData))
			fmt.Fprintf(out, "mid:          %d\n", cfg.Auth.Mid)
			fmt.Fprintf(out, "web api:      %s\n", cfg.API.WebURL)
			fmt.Fprintf(out, "app api:      %s\n", cfg.API.AppURL)
			fmt.Fprintf(out, "live api:     %s\n", cfg.API.LiveURL)
			fmt.Fprintf(out, "store:        %s\n", orDefault(cfg.Store.Path, "(memory)"))
			fmt.Fprintf(out, "player:       %s\n", orDefault(cfg.Player.Command, "(auto)"))
			fmt.Fprintf(out, "log file:     %s (%s)\n", orDefault(cfg.Logging.File, "(none)"), cfg.Logging.Level)
			return nil
		},
	}
}

func mask(secret string) string {
	if secret == "" {
		return "(none)"
	}
	if len(secret) <= 6 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:3] + strings.Repeat("*", len(secret)-6) + secret[len(secret)-3:]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// newSettingsCmd creates the settings subcommand.
func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change feed settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every setting with its value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return err
			}
			for _, name := range adapter.SettingNames() {
				value, _ := adapter.GetSetting(cfg.Settings, name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %v\n", name, value)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return err
			}
			value, err := adapter.GetSetting(cfg.Settings, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change one setting (lists are comma separated)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return err
			}
			next, err := adapter.SetSetting(cfg.Settings, args[0], args[1])
			if err != nil {
				return err
			}
			if err := adapter.SaveSettings(next); err != nil {
				return err
			}
			value, _ := adapter.GetSetting(next, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", args[0], value)
			return nil
		},
	})

	return cmd
}

// newLoginCmd creates the login subcommand.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the browser session cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return err
			}
			logger, err := adapter.SetupLogger(&cfg.Logging)
			if err != nil {
				logger = adapter.NullLogger()
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			res, err := source.NewAuthFlow(logger).Run(ctx, cfg)
			if err != nil {
				return err
			}

			cfg.Auth.SessData = res.SessData
			cfg.Auth.BiliJct = res.BiliJct
			cfg.Auth.Mid = res.Account.Mid
			if err := adapter.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved to", adapter.ConfigFile())
			return nil
		},
	}
}

// newLogoutCmd creates the logout subcommand.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and clear cached account data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.IsLoggedIn() {
				return errNotLoggedIn
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
