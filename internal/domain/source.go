package domain

import "fmt"

// Source tags the upstream an Item came from. It selects rendering and
// normalization logic for the item.
type Source string

const (
	SourceApp        Source = "app"
	SourcePc         Source = "pc"
	SourceDynamic    Source = "dynamic"
	SourceWatchlater Source = "watchlater"
	SourceFav        Source = "fav"
	SourceLive       Source = "live"
	SourceHot        Source = "hot"
	SourceSeparator  Source = "separator"
)

// Tab is a selectable content source of the feed.
type Tab string

const (
	TabAppRecommend   Tab = "app-recommend"
	TabPcRecommend    Tab = "pc-recommend"
	TabDynamicFeed    Tab = "dynamic-feed"
	TabWatchlater     Tab = "watchlater"
	TabFav            Tab = "fav"
	TabPopularGeneral Tab = "popular-general"
	TabPopularWeekly  Tab = "popular-weekly"
	TabRanking        Tab = "ranking"
	TabLive           Tab = "live"
)

// AllTabs returns every tab in display order.
func AllTabs() []Tab {
	return []Tab{
		TabAppRecommend,
		TabPcRecommend,
		TabDynamicFeed,
		TabWatchlater,
		TabFav,
		TabPopularGeneral,
		TabPopularWeekly,
		TabRanking,
		TabLive,
	}
}

// ParseTab converts a user supplied name into a Tab.
func ParseTab(name string) (Tab, error) {
	for _, t := range AllTabs() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// Source returns the item source produced by the tab's service.
func (t Tab) Source() Source {
	switch t {
	case TabAppRecommend:
		return SourceApp
	case TabPcRecommend:
		return SourcePc
	case TabDynamicFeed:
		return SourceDynamic
	case TabWatchlater:
		return SourceWatchlater
	case TabFav:
		return SourceFav
	case TabPopularGeneral, TabPopularWeekly, TabRanking:
		return SourceHot
	case TabLive:
		return SourceLive
	default:
		return ""
	}
}

// Label returns the short display name of the tab.
func (t Tab) Label() string {
	switch t {
	case TabAppRecommend:
		return "Recommend"
	case TabPcRecommend:
		return "PC Recommend"
	case TabDynamicFeed:
		return "Following"
	case TabWatchlater:
		return "Watch Later"
	case TabFav:
		return "Favorites"
	case TabPopularGeneral:
		return "Popular"
	case TabPopularWeekly:
		return "Weekly"
	case TabRanking:
		return "Ranking"
	case TabLive:
		return "Live"
	default:
		return string(t)
	}
}

// NeedsLogin reports whether the tab only works with a logged-in session.
func (t Tab) NeedsLogin() bool {
	switch t {
	case TabDynamicFeed, TabWatchlater, TabFav, TabLive:
		return true
	default:
		return false
	}
}
