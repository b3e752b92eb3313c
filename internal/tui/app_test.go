package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/service"
	"github.com/mmcdole/bilirec/internal/settings"
)

type fakeController struct {
	mu        sync.Mutex
	refreshes []service.RefreshOptions
	fetches   int
	items     []domain.Item
	hasMore   bool
}

func (f *fakeController) Refresh(_ context.Context, opts service.RefreshOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, opts)
	return nil
}

func (f *fakeController) FetchMore(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return nil
}

func (f *fakeController) Items() []domain.Item        { return f.items }
func (f *fakeController) Tab() domain.Tab             { return "" }
func (f *fakeController) HasMore() bool               { return f.hasMore }
func (f *fakeController) UsageInfo() domain.UsageInfo { return domain.UsageInfo{} }

func (f *fakeController) lastRefresh(t *testing.T) service.RefreshOptions {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.refreshes)
	return f.refreshes[len(f.refreshes)-1]
}

type fakeOpener struct{ opened []domain.Item }

func (f *fakeOpener) Open(item domain.Item) error {
	f.opened = append(f.opened, item)
	return nil
}

func newTestModel(t *testing.T, lastTab domain.Tab) (Model, *fakeController, *settings.Holder) {
	t.Helper()
	s := domain.DefaultSettings()
	s.LastTab = lastTab
	holder := settings.NewHolder(s)
	ctrl := &fakeController{}
	m := NewModel(ctrl, holder, &fakeOpener{}, nil, adapter.NullLogger())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), ctrl, holder
}

// runCmd executes cmd and any batched commands, returning their messages.
// Commands still running after a short wait (status timers) are abandoned.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	first := cmd()
	batch, ok := first.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{first}
	}

	var out []tea.Msg
	for _, c := range batch {
		if c == nil {
			continue
		}
		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		select {
		case msg := <-done:
			out = append(out, msg)
		case <-time.After(200 * time.Millisecond):
		}
	}
	return out
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(keyMsg(k))
	return updated.(Model), cmd
}

func TestNewModel_StartsOnLastTab(t *testing.T) {
	m, _, _ := newTestModel(t, domain.TabWatchlater)
	assert.Equal(t, domain.TabWatchlater, m.ActiveTab())
	assert.True(t, m.Loading)
}

func TestSwitchTab_ReusesServiceAndSavesLastTab(t *testing.T) {
	m, ctrl, holder := newTestModel(t, domain.TabAppRecommend)

	m, cmd := press(t, m, "tab")
	require.NotNil(t, cmd)
	msg := cmd()

	assert.Equal(t, domain.TabPcRecommend, m.ActiveTab())
	assert.Equal(t, domain.TabPcRecommend, holder.Snapshot().LastTab)
	assert.Equal(t, service.RefreshOptions{Tab: domain.TabPcRecommend, Reuse: true}, ctrl.lastRefresh(t))
	assert.Equal(t, RefreshDoneMsg{Tab: domain.TabPcRecommend}, msg)

	m, _ = press(t, m, "shift+tab")
	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, domain.TabLive, m.ActiveTab(), "wraps around")
}

func TestRefreshKey_RebuildsService(t *testing.T) {
	m, ctrl, _ := newTestModel(t, domain.TabAppRecommend)

	_, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, service.RefreshOptions{Tab: domain.TabAppRecommend}, ctrl.lastRefresh(t))
}

func TestToggleShuffle(t *testing.T) {
	m, ctrl, holder := newTestModel(t, domain.TabWatchlater)

	m, cmd := press(t, m, "s")
	assert.True(t, holder.Snapshot().Watchlater.Shuffle)
	assert.Equal(t, "shuffle on", m.StatusMsg)
	runCmd(cmd)
	assert.Equal(t, service.RefreshOptions{Tab: domain.TabWatchlater, Reuse: true}, ctrl.lastRefresh(t))
}

func TestToggleShuffle_UnsupportedTab(t *testing.T) {
	m, ctrl, holder := newTestModel(t, domain.TabAppRecommend)

	m, _ = press(t, m, "s")
	assert.True(t, m.StatusIsErr)
	assert.Equal(t, domain.DefaultSettings().Watchlater, holder.Snapshot().Watchlater)
	assert.Empty(t, ctrl.refreshes)
}

func TestToggleSeparator_KeepsOrder(t *testing.T) {
	m, ctrl, holder := newTestModel(t, domain.TabFav)

	_, cmd := press(t, m, "p")
	assert.False(t, holder.Snapshot().Fav.AddSeparator)
	runCmd(cmd)
	assert.Equal(t, service.RefreshOptions{Tab: domain.TabFav, Reuse: true, KeepOrder: true}, ctrl.lastRefresh(t))
}

func TestRefreshDone_IgnoresStaleResults(t *testing.T) {
	m, ctrl, _ := newTestModel(t, domain.TabAppRecommend)
	ctrl.items = []domain.Item{&domain.AppItem{ID: "app-1"}}

	updated, _ := m.Update(RefreshDoneMsg{Tab: domain.TabAppRecommend, Err: domain.ErrRefreshStale})
	m = updated.(Model)
	assert.True(t, m.Loading)
	assert.Empty(t, m.List.Items())

	updated, _ = m.Update(RefreshDoneMsg{Tab: domain.TabPcRecommend})
	m = updated.(Model)
	assert.True(t, m.Loading, "results of another tab are dropped")

	updated, _ = m.Update(RefreshDoneMsg{Tab: domain.TabAppRecommend})
	m = updated.(Model)
	assert.False(t, m.Loading)
	assert.Len(t, m.List.Items(), 1)
}

func TestRefreshDone_FetchesMoreWhenShort(t *testing.T) {
	m, ctrl, _ := newTestModel(t, domain.TabAppRecommend)
	ctrl.items = []domain.Item{&domain.AppItem{ID: "app-1"}}
	ctrl.hasMore = true

	updated, cmd := m.Update(RefreshDoneMsg{Tab: domain.TabAppRecommend})
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.Fetching)

	msg := cmd()
	assert.Equal(t, FetchMoreDoneMsg{Tab: domain.TabAppRecommend}, msg)
	assert.Equal(t, 1, ctrl.fetches)

	updated, _ = m.Update(msg)
	assert.False(t, updated.(Model).Fetching)
}

func TestOpen_SkipsSeparators(t *testing.T) {
	m, ctrl, _ := newTestModel(t, domain.TabWatchlater)
	ctrl.items = []domain.Item{
		domain.NewSeparator("watchlater-recent", "近期"),
		&domain.WatchlaterItem{ID: "watchlater-BV1", Video: domain.Video{Bvid: "BV1", Title: "t"}},
	}
	updated, _ := m.Update(RefreshDoneMsg{Tab: domain.TabWatchlater})
	m = updated.(Model)

	_, cmd := press(t, m, "o")
	assert.Nil(t, cmd)

	m, _ = press(t, m, "j")
	_, cmd = press(t, m, "o")
	require.NotNil(t, cmd)
	msg := cmd().(OpenedMsg)
	require.NoError(t, msg.Err)
	assert.Contains(t, msg.Title, "BV1")
	assert.Len(t, m.opener.(*fakeOpener).opened, 1)
}

func TestStatus_ClearedOnlyByLatestTimer(t *testing.T) {
	m, _, _ := newTestModel(t, domain.TabAppRecommend)

	updated, _ := m.Update(ToastMsg{Message: "first"})
	m = updated.(Model)
	updated, _ = m.Update(ToastMsg{Message: "second"})
	m = updated.(Model)

	updated, _ = m.Update(ClearStatusMsg{Seq: 1})
	m = updated.(Model)
	assert.Equal(t, "second", m.StatusMsg)

	updated, _ = m.Update(ClearStatusMsg{Seq: 2})
	assert.Empty(t, updated.(Model).StatusMsg)
}

func TestChannelNotifier_DoesNotBlock(t *testing.T) {
	ch := make(chan string, 1)
	n := NewChannelNotifier(ch)
	n.Toast("a")
	n.Toast("b")
	assert.Equal(t, "a", <-ch)
	assert.Empty(t, ch)
}

func TestView_RendersTabsAndStatus(t *testing.T) {
	m, _, _ := newTestModel(t, domain.TabAppRecommend)
	out := m.View()
	assert.Contains(t, out, "Recommend")
	assert.Contains(t, out, "0 items")
}
