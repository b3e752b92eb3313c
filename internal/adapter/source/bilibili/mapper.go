package bilibili

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/spf13/cast"
)

// uniqID builds "<source>-<natural id>", falling back to a random id when
// upstream omits one. Random ids never dedup across sessions.
func uniqID(src domain.Source, natural string) string {
	if natural == "" {
		natural = uuid.NewString()
	}
	return string(src) + "-" + natural
}

// parseCount reads counts that arrive as numbers, numeric strings or
// display strings such as "1.2万".
func parseCount(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return cast.ToInt64(v)
	}
	s = strings.TrimSpace(s)
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "万"):
		mult, s = 1e4, strings.TrimSuffix(s, "万")
	case strings.HasSuffix(s, "亿"):
		mult, s = 1e8, strings.TrimSuffix(s, "亿")
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0
	}
	return int64(f * mult)
}

// parseClock reads "mm:ss" or "hh:mm:ss"
func parseClock(s string) time.Duration {
	if s == "" {
		return 0
	}
	var total int
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

func seconds(n int64) time.Duration { return time.Duration(n) * time.Second }

func unixTime(ts int64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

func mapArchive(a Archive) domain.Video {
	aid := a.Aid
	if aid == 0 {
		aid = a.ID
	}
	return domain.Video{
		Aid:        aid,
		Bvid:       a.Bvid,
		Title:      a.Title,
		Cover:      a.Pic,
		Desc:       a.Desc,
		AuthorMid:  a.Owner.Mid,
		AuthorName: a.Owner.Name,
		AuthorFace: a.Owner.Face,
		Duration:   seconds(a.Duration),
		Play:       a.Stat.View,
		Like:       a.Stat.Like,
		Danmaku:    a.Stat.Danmaku,
		PubDate:    unixTime(a.Pubdate),
	}
}

// MapAppCards converts app feed cards; every card is kept so the cursor can
// advance past ads, the service decides what to show.
func MapAppCards(cards []AppCard) []*domain.AppItem {
	items := make([]*domain.AppItem, 0, len(cards))
	for _, c := range cards {
		item := &domain.AppItem{
			ID: uniqID(domain.SourceApp, c.Param),
			Video: domain.Video{
				Aid:        c.Args.Aid,
				Bvid:       c.Bvid,
				Title:      c.Title,
				Cover:      c.Cover,
				AuthorMid:  c.Args.UpID,
				AuthorName: c.Args.UpName,
				Play:       parseCount(c.CoverLeftText1),
				Danmaku:    parseCount(c.CoverLeftText2),
			},
			Goto:       c.Goto,
			CardGoto:   c.CardGoto,
			Param:      c.Param,
			Idx:        c.Idx,
			RcmdReason: c.RcmdReason,
			Region:     c.Args.Rname,
		}
		if c.PlayerArgs != nil {
			if item.Aid == 0 {
				item.Aid = c.PlayerArgs.Aid
			}
			item.Duration = seconds(c.PlayerArgs.Duration)
		}
		items = append(items, item)
	}
	return items
}

// MapPcCards converts web feed cards
func MapPcCards(cards []PcCard) []*domain.PcItem {
	items := make([]*domain.PcItem, 0, len(cards))
	for _, c := range cards {
		item := &domain.PcItem{
			ID:         uniqID(domain.SourcePc, c.Bvid),
			Video:      mapArchive(c.Archive),
			Goto:       c.Goto,
			IsFollowed: c.IsFollowed == 1,
		}
		if c.RcmdReason != nil {
			item.RcmdReason = c.RcmdReason.Content
		}
		items = append(items, item)
	}
	return items
}

// MapDynamicCards converts dynamics, skipping the ones without a video
func MapDynamicCards(cards []DynamicCard) []*domain.DynamicItem {
	items := make([]*domain.DynamicItem, 0, len(cards))
	for _, c := range cards {
		major := c.Modules.ModuleDynamic.Major
		if major == nil || major.Archive == nil {
			continue
		}
		a := major.Archive
		author := c.Modules.ModuleAuthor
		items = append(items, &domain.DynamicItem{
			ID: uniqID(domain.SourceDynamic, c.IDStr),
			Video: domain.Video{
				Aid:        cast.ToInt64(a.Aid),
				Bvid:       a.Bvid,
				Title:      a.Title,
				Cover:      a.Cover,
				Desc:       a.Desc,
				AuthorMid:  author.Mid,
				AuthorName: author.Name,
				AuthorFace: author.Face,
				Duration:   parseClock(a.DurationText),
				Play:       parseCount(a.Stat.Play),
				Danmaku:    parseCount(a.Stat.Danmaku),
				PubDate:    unixTime(cast.ToInt64(author.PubTs)),
			},
			DynamicID: c.IDStr,
			Type:      c.Type,
			PubAction: author.PubAction,
			Badge:     a.Badge.Text,
		})
	}
	return items
}

// MapWatchlater converts watch-later entries
func MapWatchlater(cards []WatchlaterCard) []*domain.WatchlaterItem {
	items := make([]*domain.WatchlaterItem, 0, len(cards))
	for _, c := range cards {
		items = append(items, &domain.WatchlaterItem{
			ID:       uniqID(domain.SourceWatchlater, c.Bvid),
			Video:    mapArchive(c.Archive),
			AddAt:    unixTime(c.AddAt),
			Progress: seconds(c.Progress),
		})
	}
	return items
}

// MapFavFolders converts the created-folders list
func MapFavFolders(folders []FavFolder) []domain.FavFolder {
	out := make([]domain.FavFolder, 0, len(folders))
	for _, f := range folders {
		out = append(out, domain.FavFolder{
			ID:         f.ID,
			Title:      f.Title,
			MediaCount: f.MediaCount,
		})
	}
	return out
}

// MapFavMedias converts folder resources; only videos (type 2) are kept
func MapFavMedias(folderID int64, folderTitle string, medias []FavMedia) []*domain.FavItem {
	items := make([]*domain.FavItem, 0, len(medias))
	for _, m := range medias {
		if m.Type != 2 {
			continue
		}
		items = append(items, &domain.FavItem{
			ID: uniqID(domain.SourceFav, m.Bvid),
			Video: domain.Video{
				Aid:        m.ID,
				Bvid:       m.Bvid,
				Title:      m.Title,
				Cover:      m.Cover,
				Desc:       m.Intro,
				AuthorMid:  m.Upper.Mid,
				AuthorName: m.Upper.Name,
				AuthorFace: m.Upper.Face,
				Duration:   seconds(m.Duration),
				Play:       m.CntInfo.Play,
				Danmaku:    m.CntInfo.Danmaku,
				PubDate:    unixTime(m.Pubtime),
			},
			FolderID:    folderID,
			FolderTitle: folderTitle,
			FavTime:     unixTime(m.FavTime),
			Attr:        m.Attr,
			Collect:     m.CntInfo.Collect,
		})
	}
	return items
}

// MapLiveRooms converts followed rooms
func MapLiveRooms(rooms []LiveRoom) []*domain.LiveItem {
	items := make([]*domain.LiveItem, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, &domain.LiveItem{
			ID:         uniqID(domain.SourceLive, strconv.FormatInt(r.RoomID, 10)),
			RoomID:     r.RoomID,
			UID:        r.UID,
			Uname:      r.Uname,
			Face:       r.Face,
			Title:      r.Title,
			Cover:      r.RoomCover,
			Area:       r.AreaNameV2,
			Online:     r.TextSmall,
			Living:     r.LiveStatus == 1,
			LastLiveAt: unixTime(r.RecordLiveTime),
		})
	}
	return items
}

func mapHot(kind domain.HotKind, a Archive, reason string, rank int) *domain.HotItem {
	return &domain.HotItem{
		ID:         uniqID(domain.SourceHot, a.Bvid),
		Video:      mapArchive(a),
		Kind:       kind,
		RcmdReason: reason,
		Rank:       rank,
	}
}

// MapPopular converts the popular list
func MapPopular(cards []PopularCard) []*domain.HotItem {
	items := make([]*domain.HotItem, 0, len(cards))
	for _, c := range cards {
		items = append(items, mapHot(domain.HotKindGeneral, c.Archive, c.RcmdReason.Content, 0))
	}
	return items
}

// MapWeekly converts one weekly issue
func MapWeekly(cards []WeeklyCard) []*domain.HotItem {
	items := make([]*domain.HotItem, 0, len(cards))
	for _, c := range cards {
		items = append(items, mapHot(domain.HotKindWeekly, c.Archive, c.RcmdReason, 0))
	}
	return items
}

// MapRanking converts a ranking list; rank is 1-based position
func MapRanking(list []Archive) []*domain.HotItem {
	items := make([]*domain.HotItem, 0, len(list))
	for i, a := range list {
		items = append(items, mapHot(domain.HotKindRanking, a, "", i+1))
	}
	return items
}
