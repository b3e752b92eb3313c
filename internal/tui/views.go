package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return m.Spinner.View() + " Starting..."
	}
	if m.State == StateHelp {
		return m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTabBar(m.Tabs, m.Active, m.Width),
		m.List.View(),
		m.renderStatusBar(),
	)
}

// RenderTabBar renders the tab labels, highlighting the active one
func RenderTabBar(tabs []domain.Tab, active, width int) string {
	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		if i == active {
			parts[i] = styles.ActiveTabStyle.Render(tab.Label())
		} else {
			parts[i] = styles.InactiveTabStyle.Render(tab.Label())
		}
	}
	bar := strings.Join(parts, " ")
	if lipgloss.Width(bar) > width && width > 0 {
		// Too narrow for all labels; show the active one with its position
		bar = styles.ActiveTabStyle.Render(fmt.Sprintf("%s %d/%d", tabs[active].Label(), active+1, len(tabs)))
	}
	return bar
}

func (m Model) renderStatusBar() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
		}
		return styles.SuccessStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	}

	left := fmt.Sprintf("%d items", domain.CountVideos(m.List.Items()))
	if usage := m.ctrl.UsageInfo(); len(usage.Fields) > 0 {
		fields := make([]string, len(usage.Fields))
		for i, f := range usage.Fields {
			fields[i] = f.Label + ": " + f.Value
		}
		left += " · " + strings.Join(fields, " · ")
	}
	if !m.ctrl.HasMore() && !m.Loading {
		left += " · end"
	}

	hints := []key.Binding{Keys.NextTab, Keys.Refresh, Keys.Filter, Keys.Open, Keys.Help}
	right := renderHints(hints)

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.DimStyle.Render(styles.Truncate(left, m.Width))
	}
	return styles.DimStyle.Render(left) + strings.Repeat(" ", gap) + right
}

func renderHints(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = styles.HelpKeyStyle.Render(h.Key) + " " + styles.HelpDescStyle.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{
		Keys.NextTab, Keys.PrevTab, Keys.Refresh, Keys.Open, Keys.Copy,
		Keys.Filter, Keys.ToggleShuffle, Keys.ToggleSeparator, Keys.ToggleFilter,
		Keys.Escape, Keys.Help, Keys.Quit,
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range bindings {
		h := binding.Help()
		b.WriteString(styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)))
		b.WriteString(styles.HelpDescStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpDescStyle.Render("j/k move · g/G top/bottom · C-d/C-u half page"))

	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(b.String()))
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
