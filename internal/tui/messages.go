package tui

import "github.com/mmcdole/bilirec/internal/domain"

// Message types for the TUI

// RefreshDoneMsg signals that a refresh of Tab finished
type RefreshDoneMsg struct {
	Tab domain.Tab
	Err error
}

// FetchMoreDoneMsg signals that a fetch-more of Tab finished
type FetchMoreDoneMsg struct {
	Tab domain.Tab
	Err error
}

// ToastMsg carries a message reported by the services
type ToastMsg struct {
	Message string
}

// OpenedMsg signals that an item was handed to the player or browser
type OpenedMsg struct {
	Title string
	Err   error
}

// CopiedMsg signals that the list was copied as text
type CopiedMsg struct {
	Lines int
	Err   error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}
