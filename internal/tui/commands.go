package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/export"
	"github.com/mmcdole/bilirec/internal/service"
)

// Command factories for async operations

const loadTimeout = 60 * time.Second

// RefreshCmd reloads a tab through the controller
func RefreshCmd(ctrl Controller, opts service.RefreshOptions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := ctrl.Refresh(ctx, opts)
		return RefreshDoneMsg{Tab: opts.Tab, Err: err}
	}
}

// FetchMoreCmd appends the next page of the active tab
func FetchMoreCmd(ctrl Controller, tab domain.Tab) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := ctrl.FetchMore(ctx)
		return FetchMoreDoneMsg{Tab: tab, Err: err}
	}
}

// WaitForToastCmd waits for the next service toast
func WaitForToastCmd(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return ToastMsg{Message: msg}
	}
}

// OpenCmd opens an item in the player or browser
func OpenCmd(opener Opener, item domain.Item) tea.Cmd {
	return func() tea.Msg {
		err := opener.Open(item)
		return OpenedMsg{Title: export.Line(item), Err: err}
	}
}

// CopyCmd writes the items as text to the system clipboard
func CopyCmd(items []domain.Item) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(export.Text(items))
		return CopiedMsg{Lines: len(items), Err: err}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
