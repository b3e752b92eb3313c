package domain

import (
	"context"
)

// RecommendRepository provides the two recommendation feeds.
type RecommendRepository interface {
	// GetAppRecommend returns the app-style feed page following idx (0 = first page)
	GetAppRecommend(ctx context.Context, idx int64) (*AppPage, error)

	// GetPcRecommend returns page freshIdx (1-based) of the web feed
	GetPcRecommend(ctx context.Context, freshIdx, pageSize int) ([]*PcItem, error)
}

// AppPage is one page of the app feed; NextIdx is the cursor for the next call.
type AppPage struct {
	Items   []*AppItem
	NextIdx int64
}

// DynamicRepository provides the followed-users dynamic feed.
type DynamicRepository interface {
	// GetDynamicFeed returns the page following q.Offset
	GetDynamicFeed(ctx context.Context, q DynamicQuery) (*DynamicPage, error)

	// GetFollowGroupMids returns the mids of the users in a follow group
	GetFollowGroupMids(ctx context.Context, tagID int64) ([]int64, error)
}

// DynamicQuery selects a dynamic feed page.
type DynamicQuery struct {
	Page    int    // 1-based page counter sent as `page`
	Offset  string // opaque token returned by the previous page
	HostMid int64  // restrict to a single uploader (0 = everyone followed)
}

// DynamicPage is one page of the dynamic feed.
type DynamicPage struct {
	Items   []*DynamicItem
	Offset  string
	HasMore bool
}

// WatchlaterRepository provides the watch-later queue.
type WatchlaterRepository interface {
	// GetWatchlater returns the whole queue, newest addition first
	GetWatchlater(ctx context.Context) ([]*WatchlaterItem, error)
}

// FavRepository provides favorites folders and their content.
type FavRepository interface {
	GetFavFolders(ctx context.Context, mid int64) ([]FavFolder, error)
	GetFavResources(ctx context.Context, folderID int64, page, pageSize int) (*FavPage, error)
}

// FavFolder is a favorites folder owned by the user.
type FavFolder struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	MediaCount int    `json:"media_count"`
}

// FavPage is one page of a favorites folder.
type FavPage struct {
	Items   []*FavItem
	HasMore bool
}

// LiveRepository provides the followed live rooms.
type LiveRepository interface {
	GetFollowingLive(ctx context.Context, page int) (*LivePage, error)
}

// LivePage is one page of followed live rooms; living rooms come first.
type LivePage struct {
	Items     []*LiveItem
	TotalPage int
}

// HotRepository provides the trending lists.
type HotRepository interface {
	GetPopular(ctx context.Context, page, pageSize int) (*HotPage, error)
	GetWeeklySeries(ctx context.Context) ([]WeeklyEpisode, error)
	GetWeekly(ctx context.Context, number int) ([]*HotItem, error)
	GetRanking(ctx context.Context, rid int) ([]*HotItem, error)
}

// HotPage is one page of the popular list.
type HotPage struct {
	Items  []*HotItem
	NoMore bool
}

// WeeklyEpisode is one issue of the weekly must-watch list.
type WeeklyEpisode struct {
	Number  int    `json:"number"`
	Subject string `json:"subject"`
	Name    string `json:"name"`
}

// AccountRepository resolves the logged-in account.
type AccountRepository interface {
	GetNav(ctx context.Context) (*Account, error)
}

// Account describes the logged-in user.
type Account struct {
	LoggedIn bool
	Mid      int64
	Uname    string
}
