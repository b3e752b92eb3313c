package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/tui/styles"
)

// Layout constants for the feed list
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// FeedList is a scrollable, filterable list of feed items.
type FeedList struct {
	items []domain.Item
	keys  ListKeyMap

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	title   string
	loading bool
	spinner string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewFeedList creates an empty list
func NewFeedList() *FeedList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &FeedList{
		keys:        DefaultListKeyMap(),
		filterInput: ti,
	}
}

// SetItems replaces the list content. The cursor stays on the same item
// when it is still present.
func (l *FeedList) SetItems(items []domain.Item) {
	var selectedID string
	if item := l.SelectedItem(); item != nil {
		selectedID = item.UniqID()
	}

	l.items = items
	if l.filterActive && l.filterQuery != "" {
		l.filteredIdx = l.match(l.filterQuery)
	}

	l.cursor = 0
	if selectedID != "" {
		for i := range l.ItemCount() {
			if l.items[l.mapIndex(i)].UniqID() == selectedID {
				l.cursor = i
				break
			}
		}
	}
	if l.cursor < l.offset {
		l.offset = 0
	}
	l.ensureVisible()
}

// Items returns the unfiltered content
func (l *FeedList) Items() []domain.Item {
	return l.items
}

func (l *FeedList) Update(msg tea.Msg) (*FeedList, tea.Cmd) {
	// Filter typing mode
	if l.filterActive && l.filterInput.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				l.clearFilter()
				return l, nil
			case "enter":
				// Accept filter, blur input to allow navigation
				l.filterInput.Blur()
				return l, nil
			case "backspace":
				if l.filterInput.Value() == "" {
					l.clearFilter()
					return l, nil
				}
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return l, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	if l.filterActive && keyMsg.String() == "esc" {
		l.clearFilter()
		return l, nil
	}

	count := l.ItemCount()
	if count == 0 {
		return l, nil
	}

	switch {
	case keyMatches(keyMsg, l.keys.Down):
		if l.cursor < count-1 {
			l.cursor++
		}
	case keyMatches(keyMsg, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case keyMatches(keyMsg, l.keys.Home):
		l.cursor = 0
		l.offset = 0
	case keyMatches(keyMsg, l.keys.End):
		l.cursor = count - 1
	case keyMatches(keyMsg, l.keys.HalfDown):
		l.cursor = min(l.cursor+max(l.maxVisible/2, 1), count-1)
	case keyMatches(keyMsg, l.keys.HalfUp):
		l.cursor = max(l.cursor-max(l.maxVisible/2, 1), 0)
	}
	l.ensureVisible()
	return l, nil
}

func (l *FeedList) View() string {
	style := styles.ActiveBorderStyle
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(l.renderContent())
}

func (l *FeedList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *FeedList) SetTitle(title string) {
	l.title = title
}

// SetLoading shows spinnerView in the list footer while loading
func (l *FeedList) SetLoading(loading bool, spinnerView string) {
	l.loading = loading
	l.spinner = spinnerView
}

// ItemCount returns the number of visible (filtered) items
func (l *FeedList) ItemCount() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.items)
}

// SelectedItem returns the item under the cursor, nil when empty
func (l *FeedList) SelectedItem() domain.Item {
	if l.cursor >= l.ItemCount() {
		return nil
	}
	return l.items[l.mapIndex(l.cursor)]
}

// SelectedIndex returns the cursor position in the visible list
func (l *FeedList) SelectedIndex() int {
	return l.cursor
}

// NearEnd reports whether the cursor is within threshold rows of the
// last item. Always false while a filter narrows the list.
func (l *FeedList) NearEnd(threshold int) bool {
	if l.filteredIdx != nil {
		return false
	}
	return l.cursor >= len(l.items)-1-threshold
}

// ResetCursor moves back to the top
func (l *FeedList) ResetCursor() {
	l.cursor = 0
	l.offset = 0
}

// ToggleFilter activates the filter input
func (l *FeedList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *FeedList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *FeedList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *FeedList) ClearFilter() {
	l.clearFilter()
}

func (l *FeedList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
}

func (l *FeedList) applyFilter() {
	l.filterQuery = l.filterInput.Value()
	if l.filterQuery == "" {
		l.filteredIdx = nil
		return
	}
	l.filteredIdx = l.match(l.filterQuery)
	l.cursor = 0
	l.offset = 0
}

// match returns item indices fuzzy matching query, best match first.
// Separators never match.
func (l *FeedList) match(query string) []int {
	values := make([]string, len(l.items))
	for i, item := range l.items {
		if !domain.IsSeparator(item) {
			values[i] = strings.ToLower(FilterValue(item))
		}
	}

	matches := fuzzy.Find(strings.ToLower(query), values)
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	return idx
}

func (l *FeedList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

func (l *FeedList) recalcMaxVisible() {
	// Reserve the title line and both scroll indicators
	l.maxVisible = l.height - BorderHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *FeedList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

// Rendering

func (l *FeedList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.ItemCount()
	if count == 0 {
		msg := "No items"
		switch {
		case l.loading:
			msg = l.spinner + " Loading..."
		case l.filterActive && l.filterQuery != "":
			msg = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(msg) + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, renderRow(l.items[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	// Header and footer always take a line to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	switch {
	case l.loading:
		footer = l.spinner + styles.DimStyle.Render(" Loading...")
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *FeedList) renderFilterBar() string {
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.ItemCount(), len(l.items)))
	}
	return l.filterInput.View() + countStr
}

func renderRow(item domain.Item, selected bool, width int) string {
	switch v := item.(type) {
	case *domain.Separator:
		line := styles.Truncate("── "+v.Content+" ", max(width-2, 1))
		line += strings.Repeat("─", max(width-2-lipgloss.Width(line), 0))
		return " " + styles.SeparatorStyle.Render(line) + " "

	case *domain.LiveItem:
		dot, fg := "○", styles.DimGray
		if v.Living {
			dot, fg = "●", styles.Red
		}
		author := " · " + v.Uname
		title := styles.Truncate(v.Title, max(width-4-lipgloss.Width(author), 5))
		dim := styles.DimGray
		return styles.RenderListRow([]styles.RowPart{
			{Text: dot, Foreground: &fg},
			{Text: " " + title},
			{Text: author, Foreground: &dim},
		}, selected, width)

	case domain.VideoItem:
		info := v.VideoInfo()
		meta := " · " + info.AuthorName
		if info.Duration > 0 {
			meta += " · " + info.FormattedDuration()
		}
		if info.Play > 0 {
			meta += " · " + FormatCount(info.Play)
		}
		marker, fg := sourceMarker(item)
		title := styles.Truncate(info.Title, max(width-4-lipgloss.Width(meta), 5))
		dim := styles.DimGray
		return styles.RenderListRow([]styles.RowPart{
			{Text: marker, Foreground: &fg},
			{Text: " " + title},
			{Text: meta, Foreground: &dim},
		}, selected, width)

	default:
		return styles.RenderListRow([]styles.RowPart{{Text: item.UniqID()}}, selected, width)
	}
}

func sourceMarker(item domain.Item) (string, lipgloss.Color) {
	switch v := item.(type) {
	case *domain.PcItem:
		if v.IsFollowed {
			return "★", styles.BiliPink
		}
	case *domain.WatchlaterItem:
		if v.Progress > 0 {
			return "◐", styles.BiliBlue
		}
	case *domain.HotItem:
		if v.Rank > 0 && v.Rank <= 3 {
			return "▲", styles.BiliPink
		}
	}
	return "▶", styles.BiliBlue
}

// FilterValue is the text the fuzzy filter matches against
func FilterValue(item domain.Item) string {
	switch v := item.(type) {
	case *domain.Separator:
		return v.Content
	case *domain.LiveItem:
		return v.Title + " " + v.Uname
	case domain.VideoItem:
		info := v.VideoInfo()
		return info.Title + " " + info.AuthorName
	default:
		return item.UniqID()
	}
}

// FormatCount renders a play count the way the site does (1.2万, 3.4亿)
func FormatCount(n int64) string {
	switch {
	case n >= 100_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/100_000_000)) + "亿"
	case n >= 10_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/10_000)) + "万"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
