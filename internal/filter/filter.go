// Package filter drops items failing the user's thresholds and blocklists
// and removes duplicates across pages.
package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

// Filter is a compiled FilterSettings. Build one per call from a settings
// snapshot.
type Filter struct {
	enabled        bool
	minPlay        int64
	minDuration    time.Duration
	exemptFollowed bool

	authorNames map[string]bool
	authorMids  map[int64]bool
	keywords    []string
	patterns    []*regexp.Regexp
}

// New compiles settings. Keywords written as /expr/ are regular
// expressions; an invalid one is matched as plain text instead.
func New(s domain.FilterSettings) *Filter {
	f := &Filter{
		enabled:        s.Enabled,
		minPlay:        s.MinPlayCount,
		minDuration:    time.Duration(s.MinDurationSeconds) * time.Second,
		exemptFollowed: s.ExemptFollowed,
		authorNames:    make(map[string]bool),
		authorMids:     make(map[int64]bool),
	}

	for _, a := range s.BlockedAuthors {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if mid, err := strconv.ParseInt(a, 10, 64); err == nil {
			f.authorMids[mid] = true
			continue
		}
		f.authorNames[strings.ToLower(a)] = true
	}

	for _, k := range s.BlockedTitleKeywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if len(k) > 2 && strings.HasPrefix(k, "/") && strings.HasSuffix(k, "/") {
			if re, err := regexp.Compile("(?i)" + k[1:len(k)-1]); err == nil {
				f.patterns = append(f.patterns, re)
				continue
			}
		}
		f.keywords = append(f.keywords, strings.ToLower(k))
	}
	return f
}

// Apply returns the items that pass, in order. A separator is dropped when
// the filter removed every item of its group.
func (f *Filter) Apply(items []domain.Item) []domain.Item {
	if !f.enabled {
		return items
	}
	out := make([]domain.Item, 0, len(items))
	sep := -1 // index in out of the open group's separator
	dropped, kept := 0, 0
	closeGroup := func() {
		if sep >= 0 && dropped > 0 && kept == 0 {
			out = append(out[:sep], out[sep+1:]...)
		}
	}
	for _, item := range items {
		if domain.IsSeparator(item) {
			closeGroup()
			sep, dropped, kept = len(out), 0, 0
			out = append(out, item)
			continue
		}
		if f.Keep(item) {
			out = append(out, item)
			kept++
		} else {
			dropped++
		}
	}
	closeGroup()
	return out
}

// Keep reports whether item passes. Curated lists (watch later,
// favorites) are never filtered; dynamics from followed users only face the
// blocklists; live rooms only the author blocklist.
func (f *Filter) Keep(item domain.Item) bool {
	if !f.enabled {
		return true
	}

	switch v := item.(type) {
	case *domain.Separator, *domain.WatchlaterItem, *domain.FavItem:
		return true
	case *domain.LiveItem:
		return !f.blockedAuthor(v.UID, v.Uname)
	case *domain.DynamicItem:
		return !f.blockedAuthor(v.AuthorMid, v.AuthorName) && !f.blockedTitle(v.Title)
	case *domain.PcItem:
		if v.IsFollowed && f.exemptFollowed {
			return true
		}
		return f.keepVideo(&v.Video)
	case domain.VideoItem:
		return f.keepVideo(v.VideoInfo())
	default:
		return true
	}
}

func (f *Filter) keepVideo(v *domain.Video) bool {
	if f.blockedAuthor(v.AuthorMid, v.AuthorName) || f.blockedTitle(v.Title) {
		return false
	}
	// zero means upstream omitted the count
	if f.minPlay > 0 && v.Play > 0 && v.Play < f.minPlay {
		return false
	}
	if f.minDuration > 0 && v.Duration > 0 && v.Duration < f.minDuration {
		return false
	}
	return true
}

func (f *Filter) blockedAuthor(mid int64, name string) bool {
	if mid != 0 && f.authorMids[mid] {
		return true
	}
	return name != "" && f.authorNames[strings.ToLower(name)]
}

func (f *Filter) blockedTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range f.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// Dedup drops items whose uniqId is already in seen and records the rest
func Dedup(seen map[string]struct{}, items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		id := item.UniqID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}
