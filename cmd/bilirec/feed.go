package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/export"
	"github.com/mmcdole/bilirec/internal/service"
	"github.com/mmcdole/bilirec/internal/tui/components"
)

type feedOptions struct {
	tab    string
	count  int
	format string
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd() *cobra.Command {
	var opts feedOptions

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print items of a tab",
		Long:  "Load a tab the same way the TUI does and print the first items as text or JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tab, "tab", "t", "", "tab to load (default: last used tab)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 20, "number of videos to print")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")

	return cmd
}

// stderrNotifier prints service toasts as warnings
type stderrNotifier struct {
	w io.Writer
}

func (n stderrNotifier) Toast(msg string) {
	color.New(color.FgYellow).Fprintln(n.w, "! "+msg)
}

func runFeed(cmd *cobra.Command, opts feedOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", opts.format)
	}

	a, err := newApp(stderrNotifier{w: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close()

	tab := a.settings.Snapshot().LastTab
	if opts.tab != "" {
		if tab, err = domain.ParseTab(opts.tab); err != nil {
			return err
		}
	}
	if tab.NeedsLogin() && !a.cfg.IsLoggedIn() {
		return errNotLoggedIn
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	items, err := collect(ctx, a.ctrl, tab, opts.count)
	if err != nil && len(items) == 0 {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		return export.JSON(out, items)
	}
	printItems(out, items)
	return nil
}

// feedController is the part of service.Controller collect drives
type feedController interface {
	Refresh(ctx context.Context, opts service.RefreshOptions) error
	FetchMore(ctx context.Context) error
	Items() []domain.Item
	HasMore() bool
}

// collect refreshes tab and fetches until count videos are loaded or the
// source runs dry. The result is cut after the count-th video.
func collect(ctx context.Context, ctrl feedController, tab domain.Tab, count int) ([]domain.Item, error) {
	if err := ctrl.Refresh(ctx, service.RefreshOptions{Tab: tab, Reuse: true}); err != nil {
		return nil, err
	}

	var err error
	for domain.CountVideos(ctrl.Items()) < count && ctrl.HasMore() {
		before := len(ctrl.Items())
		if err = ctrl.FetchMore(ctx); err != nil {
			break
		}
		if len(ctrl.Items()) == before && !ctrl.HasMore() {
			break
		}
	}
	return truncateVideos(ctrl.Items(), count), err
}

func truncateVideos(items []domain.Item, count int) []domain.Item {
	n := 0
	for i, item := range items {
		if domain.IsSeparator(item) {
			continue
		}
		n++
		if n == count {
			return items[:i+1]
		}
	}
	return items
}

var (
	titleColor     = color.New(color.FgHiWhite, color.Bold)
	authorColor    = color.New(color.FgCyan)
	metaColor      = color.New(color.FgHiBlack)
	separatorColor = color.New(color.FgMagenta, color.Bold)
	liveColor      = color.New(color.FgRed, color.Bold)
)

// printItems writes one colored line per item
func printItems(w io.Writer, items []domain.Item) {
	for _, item := range items {
		switch v := item.(type) {
		case *domain.Separator:
			separatorColor.Fprintf(w, "── %s ──\n", v.Content)

		case *domain.LiveItem:
			state := metaColor.Sprint("offline")
			if v.Living {
				state = liveColor.Sprint("LIVE")
			}
			fmt.Fprintf(w, "%s %s %s %s\n", state, titleColor.Sprint(v.Title), authorColor.Sprint(v.Uname), metaColor.Sprint(v.URL()))

		case domain.VideoItem:
			info := v.VideoInfo()
			var meta []string
			if info.Duration > 0 {
				meta = append(meta, info.FormattedDuration())
			}
			if info.Play > 0 {
				meta = append(meta, components.FormatCount(info.Play)+" plays")
			}
			meta = append(meta, info.URL())
			fmt.Fprintf(w, "%s - %s  %s\n", titleColor.Sprint(info.Title), authorColor.Sprint(info.AuthorName), metaColor.Sprint(strings.Join(meta, "  ")))

		default:
			fmt.Fprintln(w, export.Line(item))
		}
	}
}

// newTabsCmd creates the tabs subcommand.
func newTabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the available tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, tab := range domain.AllTabs() {
				login := ""
				if tab.NeedsLogin() {
					login = metaColor.Sprint(" (login)")
				}
				fmt.Fprintf(out, "%-16s %s%s\n", tab, tab.Label(), login)
			}
			return nil
		},
	}
}

// newOpenCmd creates the open subcommand.
func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <bvid|avid|url>",
		Short: "Open a video in the configured player or the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(nil)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.playback.OpenVideo(args[0])
		},
	}
}

var errNotLoggedIn = errors.New("not logged in: run 'bilirec login' first")
