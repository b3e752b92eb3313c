package tui

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/service"
	"github.com/mmcdole/bilirec/internal/tui/components"
	"github.com/mmcdole/bilirec/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

const (
	// fetchThreshold is how close to the end the cursor gets before the
	// next page is requested
	fetchThreshold = 5

	statusDuration = 4 * time.Second

	// ChromeHeight is the tab bar plus the status line
	ChromeHeight = 2
)

// Controller is the feed controller the model drives
type Controller interface {
	Refresh(ctx context.Context, opts service.RefreshOptions) error
	FetchMore(ctx context.Context) error
	Items() []domain.Item
	Tab() domain.Tab
	HasMore() bool
	UsageInfo() domain.UsageInfo
}

// SettingsStore reads and mutates the user settings
type SettingsStore interface {
	Snapshot() domain.Settings
	Update(fn func(*domain.Settings)) domain.Settings
}

// Opener launches an item outside the terminal
type Opener interface {
	Open(item domain.Item) error
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	// Services
	ctrl     Controller
	settings SettingsStore
	opener   Opener
	toasts   <-chan string
	logger   *slog.Logger

	// Tabs
	Tabs   []domain.Tab
	Active int

	// UI components
	List    *components.FeedList
	Spinner spinner.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	statusSeq   int
	Loading     bool
	Fetching    bool
}

// NewModel creates a new application model. toasts receives the messages
// of the ChannelNotifier handed to the controller.
func NewModel(ctrl Controller, settings SettingsStore, opener Opener, toasts <-chan string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	s := settings.Snapshot()
	tabs := slices.DeleteFunc(domain.AllTabs(), func(t domain.Tab) bool { return !s.TabEnabled(t) })
	if len(tabs) == 0 {
		tabs = domain.AllTabs()
	}
	active := max(slices.Index(tabs, s.LastTab), 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		State:    StateBrowsing,
		ctrl:     ctrl,
		settings: settings,
		opener:   opener,
		toasts:   toasts,
		logger:   logger,
		Tabs:     tabs,
		Active:   active,
		List:     components.NewFeedList(),
		Spinner:  sp,
		Loading:  true,
	}
}

// ActiveTab returns the selected tab
func (m Model) ActiveTab() domain.Tab {
	return m.Tabs[m.Active]
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		RefreshCmd(m.ctrl, service.RefreshOptions{Tab: m.ActiveTab(), Reuse: true}),
		WaitForToastCmd(m.toasts),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.List.SetSize(m.Width, max(m.Height-ChromeHeight, 4))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.syncListState()
		return m, cmd

	case RefreshDoneMsg:
		// A newer refresh owns the list now
		if msg.Tab != m.ActiveTab() || errors.Is(msg.Err, domain.ErrRefreshStale) {
			return m, nil
		}
		m.Loading = false
		m.List.SetItems(m.ctrl.Items())
		m.syncListState()
		if msg.Err != nil {
			m.logger.Warn("refresh failed", "tab", msg.Tab, "error", msg.Err)
			return m, nil
		}
		cmd := m.maybeFetchMore()
		return m, cmd

	case FetchMoreDoneMsg:
		if msg.Tab != m.ActiveTab() || errors.Is(msg.Err, domain.ErrRefreshStale) {
			return m, nil
		}
		m.Fetching = false
		m.List.SetItems(m.ctrl.Items())
		m.syncListState()
		if msg.Err != nil {
			m.logger.Warn("fetch more failed", "tab", msg.Tab, "error", msg.Err)
		}
		return m, nil

	case ToastMsg:
		cmd := m.setStatus(msg.Message, false)
		return m, tea.Batch(cmd, WaitForToastCmd(m.toasts))

	case OpenedMsg:
		if msg.Err != nil {
			cmd := m.setStatus("open failed: "+msg.Err.Error(), true)
			return m, cmd
		}
		cmd := m.setStatus("opened "+msg.Title, false)
		return m, cmd

	case CopiedMsg:
		if msg.Err != nil {
			cmd := m.setStatus("copy failed: "+msg.Err.Error(), true)
			return m, cmd
		}
		cmd := m.setStatus(pluralize(msg.Lines, "line")+" copied", false)
		return m, cmd

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

// switchTab moves by delta tabs and loads the new one, replaying its
// buffered items when the service is still cached
func (m Model) switchTab(delta int) (Model, tea.Cmd) {
	if len(m.Tabs) < 2 {
		return m, nil
	}
	m.Active = (m.Active + delta + len(m.Tabs)) % len(m.Tabs)
	tab := m.ActiveTab()
	m.settings.Update(func(s *domain.Settings) { s.LastTab = tab })

	m.List.ClearFilter()
	m.List.ResetCursor()
	m.List.SetItems(nil)
	return m.refresh(service.RefreshOptions{Tab: tab, Reuse: true})
}

func (m Model) refresh(opts service.RefreshOptions) (Model, tea.Cmd) {
	m.Loading = true
	m.Fetching = false
	m.syncListState()
	return m, RefreshCmd(m.ctrl, opts)
}

// maybeFetchMore requests the next page when the cursor nears the end
func (m *Model) maybeFetchMore() tea.Cmd {
	if m.Loading || m.Fetching || !m.ctrl.HasMore() || !m.List.NearEnd(fetchThreshold) {
		return nil
	}
	m.Fetching = true
	m.syncListState()
	return FetchMoreCmd(m.ctrl, m.ActiveTab())
}

func (m *Model) syncListState() {
	title := m.ActiveTab().Label()
	if usage := m.ctrl.UsageInfo(); usage.Title != "" {
		title += " · " + usage.Title
	}
	m.List.SetTitle(title)
	m.List.SetLoading(m.Loading || m.Fetching, m.Spinner.View())
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusDuration)
}
