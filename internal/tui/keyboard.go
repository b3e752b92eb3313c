package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/service"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	// The filter input owns the keyboard while typing
	if m.List.IsFilterTyping() {
		var cmd tea.Cmd
		m.List, cmd = m.List.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.List.IsFiltering() {
			m.List.ClearFilter()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.List.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		return m.switchTab(1)

	case key.Matches(msg, Keys.PrevTab):
		return m.switchTab(-1)

	case key.Matches(msg, Keys.Refresh):
		m.List.ResetCursor()
		return m.refresh(service.RefreshOptions{Tab: m.ActiveTab()})

	case key.Matches(msg, Keys.Open):
		item := m.List.SelectedItem()
		if item == nil || domain.IsSeparator(item) || m.opener == nil {
			return m, nil
		}
		return m, OpenCmd(m.opener, item)

	case key.Matches(msg, Keys.Copy):
		items := m.List.Items()
		if len(items) == 0 {
			return m, nil
		}
		return m, CopyCmd(items)

	case key.Matches(msg, Keys.ToggleShuffle):
		return m.toggleShuffle()

	case key.Matches(msg, Keys.ToggleSeparator):
		return m.toggleSeparator()

	case key.Matches(msg, Keys.ToggleFilter):
		s := m.settings.Update(func(s *domain.Settings) { s.Filter.Enabled = !s.Filter.Enabled })
		status := m.setStatus("content filter "+onOff(s.Filter.Enabled), false)
		m, cmd := m.refresh(service.RefreshOptions{Tab: m.ActiveTab(), Reuse: true})
		return m, tea.Batch(cmd, status)
	}

	// Everything else moves the cursor
	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	fetch := m.maybeFetchMore()
	return m, tea.Batch(cmd, fetch)
}

// toggleShuffle flips the shuffle setting of the active tab. The service is
// rebuilt with a fresh order.
func (m Model) toggleShuffle() (tea.Model, tea.Cmd) {
	tab := m.ActiveTab()
	var on bool
	switch tab {
	case domain.TabWatchlater:
		on = m.settings.Update(func(s *domain.Settings) { s.Watchlater.Shuffle = !s.Watchlater.Shuffle }).Watchlater.Shuffle
	case domain.TabFav:
		on = m.settings.Update(func(s *domain.Settings) { s.Fav.Shuffle = !s.Fav.Shuffle }).Fav.Shuffle
	case domain.TabPopularWeekly:
		on = m.settings.Update(func(s *domain.Settings) { s.Hot.WeeklyShuffle = !s.Hot.WeeklyShuffle }).Hot.WeeklyShuffle
	default:
		cmd := m.setStatus(tab.Label()+" has no shuffle mode", true)
		return m, cmd
	}

	m.List.ResetCursor()
	status := m.setStatus("shuffle "+onOff(on), false)
	m, cmd := m.refresh(service.RefreshOptions{Tab: tab, Reuse: true})
	return m, tea.Batch(cmd, status)
}

// toggleSeparator flips the separator setting of the active tab, keeping
// the current shuffle order.
func (m Model) toggleSeparator() (tea.Model, tea.Cmd) {
	tab := m.ActiveTab()
	var on bool
	switch tab {
	case domain.TabWatchlater:
		on = m.settings.Update(func(s *domain.Settings) { s.Watchlater.AddSeparator = !s.Watchlater.AddSeparator }).Watchlater.AddSeparator
	case domain.TabFav:
		on = m.settings.Update(func(s *domain.Settings) { s.Fav.AddSeparator = !s.Fav.AddSeparator }).Fav.AddSeparator
	default:
		cmd := m.setStatus(tab.Label()+" has no separators", true)
		return m, cmd
	}

	status := m.setStatus("separators "+onOff(on), false)
	m, cmd := m.refresh(service.RefreshOptions{Tab: tab, Reuse: true, KeepOrder: true})
	return m, tea.Batch(cmd, status)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
