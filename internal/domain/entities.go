package domain

import (
	"fmt"
	"time"
)

// Item is the tagged union every service produces. The concrete type is one
// of *AppItem, *PcItem, *DynamicItem, *WatchlaterItem, *FavItem, *LiveItem,
// *HotItem or *Separator.
type Item interface {
	// UniqID is the stable identifier used for dedup and list diffing
	UniqID() string

	// Source is the discriminator selecting rendering and normalization
	Source() Source
}

// VideoItem is implemented by every variant that wraps a video.
type VideoItem interface {
	Item
	VideoInfo() *Video
}

// Video holds the upstream video fields shared by the video variants.
type Video struct {
	Aid        int64         `json:"aid"`
	Bvid       string        `json:"bvid"`
	Title      string        `json:"title"`
	Cover      string        `json:"cover"`
	Desc       string        `json:"desc,omitempty"`
	AuthorMid  int64         `json:"author_mid"`
	AuthorName string        `json:"author_name"`
	AuthorFace string        `json:"author_face,omitempty"`
	Duration   time.Duration `json:"duration"`
	Play       int64         `json:"play"`
	Like       int64         `json:"like"`
	Danmaku    int64         `json:"danmaku"`
	PubDate    time.Time     `json:"pubdate"`
}

// URL returns the web page of the video.
func (v *Video) URL() string {
	if v.Bvid != "" {
		return "https://www.bilibili.com/video/" + v.Bvid
	}
	if v.Aid != 0 {
		return fmt.Sprintf("https://www.bilibili.com/video/av%d", v.Aid)
	}
	return ""
}

// FormattedDuration returns the duration as m:ss or h:mm:ss
func (v *Video) FormattedDuration() string {
	total := int(v.Duration.Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// AppItem comes from the app-style recommendation feed.
type AppItem struct {
	ID string `json:"uniq_id"`
	Video
	Goto       string `json:"goto"`
	CardGoto   string `json:"card_goto"`
	Param      string `json:"param"`
	Idx        int64  `json:"idx"`
	RcmdReason string `json:"rcmd_reason,omitempty"`
	Region     string `json:"region,omitempty"`
}

func (i *AppItem) UniqID() string    { return i.ID }
func (i *AppItem) Source() Source    { return SourceApp }
func (i *AppItem) VideoInfo() *Video { return &i.Video }

// PcItem comes from the web recommendation feed.
type PcItem struct {
	ID string `json:"uniq_id"`
	Video
	Goto       string `json:"goto"`
	IsFollowed bool   `json:"is_followed"`
	RcmdReason string `json:"rcmd_reason,omitempty"`
}

func (i *PcItem) UniqID() string    { return i.ID }
func (i *PcItem) Source() Source    { return SourcePc }
func (i *PcItem) VideoInfo() *Video { return &i.Video }

// DynamicItem is a video post from the followed-users dynamic feed.
type DynamicItem struct {
	ID string `json:"uniq_id"`
	Video
	DynamicID string `json:"dynamic_id"`
	Type      string `json:"type"`
	PubAction string `json:"pub_action,omitempty"`
	Badge     string `json:"badge,omitempty"`
}

func (i *DynamicItem) UniqID() string    { return i.ID }
func (i *DynamicItem) Source() Source    { return SourceDynamic }
func (i *DynamicItem) VideoInfo() *Video { return &i.Video }

// WatchlaterItem is an entry of the watch-later queue.
type WatchlaterItem struct {
	ID string `json:"uniq_id"`
	Video
	AddAt    time.Time     `json:"add_at"`
	Progress time.Duration `json:"progress"`
}

func (i *WatchlaterItem) UniqID() string    { return i.ID }
func (i *WatchlaterItem) Source() Source    { return SourceWatchlater }
func (i *WatchlaterItem) VideoInfo() *Video { return &i.Video }

// FavItem is a resource inside a favorites folder.
type FavItem struct {
	ID string `json:"uniq_id"`
	Video
	FolderID    int64     `json:"folder_id"`
	FolderTitle string    `json:"folder_title"`
	FavTime     time.Time `json:"fav_time"`
	Attr        int       `json:"attr"`
	Collect     int64     `json:"collect"`
}

func (i *FavItem) UniqID() string    { return i.ID }
func (i *FavItem) Source() Source    { return SourceFav }
func (i *FavItem) VideoInfo() *Video { return &i.Video }

// Invalid reports whether the favorited video was deleted upstream.
func (i *FavItem) Invalid() bool {
	return i.Attr == 9 || i.Attr == 1 || i.Title == "已失效视频"
}

// LiveItem is a followed streamer's live room.
type LiveItem struct {
	ID         string    `json:"uniq_id"`
	RoomID     int64     `json:"room_id"`
	UID        int64     `json:"uid"`
	Uname      string    `json:"uname"`
	Face       string    `json:"face,omitempty"`
	Title      string    `json:"title"`
	Cover      string    `json:"cover"`
	Area       string    `json:"area,omitempty"`
	Online     string    `json:"online,omitempty"`
	Living     bool      `json:"living"`
	LastLiveAt time.Time `json:"last_live_at"`
}

func (i *LiveItem) UniqID() string { return i.ID }
func (i *LiveItem) Source() Source { return SourceLive }

// URL returns the live room page.
func (i *LiveItem) URL() string {
	return fmt.Sprintf("https://live.bilibili.com/%d", i.RoomID)
}

// HotKind distinguishes the trending lists.
type HotKind string

const (
	HotKindGeneral HotKind = "general"
	HotKindWeekly  HotKind = "weekly"
	HotKindRanking HotKind = "ranking"
)

// HotItem comes from one of the trending lists.
type HotItem struct {
	ID string `json:"uniq_id"`
	Video
	Kind       HotKind `json:"kind"`
	RcmdReason string  `json:"rcmd_reason,omitempty"`
	Rank       int     `json:"rank,omitempty"`
}

func (i *HotItem) UniqID() string    { return i.ID }
func (i *HotItem) Source() Source    { return SourceHot }
func (i *HotItem) VideoInfo() *Video { return &i.Video }

// Separator is a non-video marker grouping the items that follow it.
type Separator struct {
	ID      string `json:"uniq_id"`
	Content string `json:"content"`
}

func (i *Separator) UniqID() string { return i.ID }
func (i *Separator) Source() Source { return SourceSeparator }

// NewSeparator creates a separator with a deterministic id so it dedups
// across pages.
func NewSeparator(id, content string) *Separator {
	return &Separator{ID: "separator-" + id, Content: content}
}

// IsSeparator reports whether item is a Separator.
func IsSeparator(item Item) bool {
	_, ok := item.(*Separator)
	return ok
}

// CountVideos counts the non-separator items.
func CountVideos(items []Item) int {
	n := 0
	for _, item := range items {
		if !IsSeparator(item) {
			n++
		}
	}
	return n
}
