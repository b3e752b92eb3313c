// Package export renders the current item list for tooling outside the
// front-end: copy-as-text lines, a JSON dump and a small state snapshot.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/service"
)

// itemWrapper tags an item with its source for JSON output
type itemWrapper struct {
	Source     domain.Source          `json:"source"`
	App        *domain.AppItem        `json:"app,omitempty"`
	Pc         *domain.PcItem         `json:"pc,omitempty"`
	Dynamic    *domain.DynamicItem    `json:"dynamic,omitempty"`
	Watchlater *domain.WatchlaterItem `json:"watchlater,omitempty"`
	Fav        *domain.FavItem        `json:"fav,omitempty"`
	Live       *domain.LiveItem       `json:"live,omitempty"`
	Hot        *domain.HotItem        `json:"hot,omitempty"`
	Separator  *domain.Separator      `json:"separator,omitempty"`
	URL        string                 `json:"url,omitempty"`
}

func wrapItems(items []domain.Item) []itemWrapper {
	wrappers := make([]itemWrapper, 0, len(items))
	for _, item := range items {
		w := itemWrapper{Source: item.Source(), URL: service.ItemURL(item)}
		switch v := item.(type) {
		case *domain.AppItem:
			w.App = v
		case *domain.PcItem:
			w.Pc = v
		case *domain.DynamicItem:
			w.Dynamic = v
		case *domain.WatchlaterItem:
			w.Watchlater = v
		case *domain.FavItem:
			w.Fav = v
		case *domain.LiveItem:
			w.Live = v
		case *domain.HotItem:
			w.Hot = v
		case *domain.Separator:
			w.Separator = v
		default:
			continue
		}
		wrappers = append(wrappers, w)
	}
	return wrappers
}

// Line formats one item as "title - author - url". Separators become a
// bracketed heading.
func Line(item domain.Item) string {
	switch v := item.(type) {
	case *domain.Separator:
		return "[" + v.Content + "]"
	case *domain.LiveItem:
		return fmt.Sprintf("%s - %s - %s", v.Title, v.Uname, v.URL())
	case domain.VideoItem:
		info := v.VideoInfo()
		return fmt.Sprintf("%s - %s - %s", info.Title, info.AuthorName, info.URL())
	default:
		return item.UniqID()
	}
}

// Text returns the copy-as-text rendering of items, one per line.
func Text(items []domain.Item) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(Line(item))
		b.WriteByte('\n')
	}
	return b.String()
}

// JSON writes items as an indented array of source-tagged objects.
func JSON(w io.Writer, items []domain.Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(wrapItems(items))
}

// State is a snapshot of the controller for debugging.
type State struct {
	Tab         domain.Tab            `json:"tab"`
	RefreshedAt time.Time             `json:"refreshed_at"`
	Loading     bool                  `json:"loading"`
	HasMore     bool                  `json:"has_more"`
	Items       int                   `json:"items"`
	Videos      int                   `json:"videos"`
	Usage       domain.UsageInfo      `json:"usage"`
	Sources     map[domain.Source]int `json:"sources"`
}

// controller is the read side of service.Controller used by the hooks
type controller interface {
	Items() []domain.Item
	Tab() domain.Tab
	RefreshedAt() int64
	Loading() bool
	HasMore() bool
	UsageInfo() domain.UsageInfo
}

// Hooks exposes the controller's current state to external tooling.
type Hooks struct {
	ctrl controller
}

// NewHooks creates hooks over ctrl
func NewHooks(ctrl controller) *Hooks {
	return &Hooks{ctrl: ctrl}
}

// CurrentItems returns the rendered item list.
func (h *Hooks) CurrentItems() []domain.Item {
	return h.ctrl.Items()
}

// CopyText returns the current list as copy-as-text lines.
func (h *Hooks) CopyText() string {
	return Text(h.ctrl.Items())
}

// WriteJSON dumps the current list to w.
func (h *Hooks) WriteJSON(w io.Writer) error {
	return JSON(w, h.ctrl.Items())
}

// DumpState summarizes the controller.
func (h *Hooks) DumpState() State {
	items := h.ctrl.Items()
	st := State{
		Tab:     h.ctrl.Tab(),
		Loading: h.ctrl.Loading(),
		HasMore: h.ctrl.HasMore(),
		Items:   len(items),
		Videos:  domain.CountVideos(items),
		Usage:   h.ctrl.UsageInfo(),
		Sources: make(map[domain.Source]int),
	}
	if ts := h.ctrl.RefreshedAt(); ts > 0 {
		st.RefreshedAt = time.Unix(0, ts)
	}
	for _, item := range items {
		st.Sources[item.Source()]++
	}
	return st
}

var _ controller = (*service.Controller)(nil)
