package feed

import (
	"context"
	"strconv"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

// DynamicService pages the followed-users video dynamics with the page
// counter and opaque offset token the upstream hands back.
type DynamicService struct {
	repo  domain.DynamicRepository
	live  domain.LiveRepository // optional, for the live prefix
	store domain.KVStore        // optional, for search mode
	deps  Deps
	cfg   domain.DynamicSettings

	page    int
	offset  string
	hasMore bool

	groupMids map[int64]bool // nil until fetched
	search    *dynamicSearch
}

// NewDynamicService creates a dynamic feed service. cfg is fixed for the
// life of the service; the registry recreates it when cfg changes.
func NewDynamicService(repo domain.DynamicRepository, live domain.LiveRepository, store domain.KVStore, cfg domain.DynamicSettings, deps Deps) *DynamicService {
	s := &DynamicService{
		repo:    repo,
		live:    live,
		store:   store,
		deps:    deps.WithDefaults(),
		cfg:     cfg,
		hasMore: true,
	}
	if cfg.UpMid > 0 && cfg.SearchText != "" {
		s.search = newDynamicSearch(repo, store, cfg.UpMid, cfg.SearchText, s.deps)
	}
	return s
}

func (s *DynamicService) Source() domain.Source { return domain.SourceDynamic }

func (s *DynamicService) HasMore() bool {
	if s.search != nil {
		return s.search.hasMore()
	}
	return s.hasMore
}

func (s *DynamicService) HasCache() bool {
	return s.search != nil && s.search.queue.HasCache()
}

func (s *DynamicService) Restore() {
	if s.search != nil {
		s.search.queue.Restore()
	}
}

// LoadMore fetches the next dynamics page
func (s *DynamicService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	settings := s.deps.Settings.Snapshot()
	minDuration := time.Duration(settings.Dynamic.MinDurationSeconds) * time.Second

	if s.search != nil {
		return s.search.loadMore(ctx)
	}
	if !s.hasMore {
		return nil, nil
	}

	if s.cfg.FollowGroupTagID > 0 && s.groupMids == nil {
		mids, err := s.repo.GetFollowGroupMids(ctx, s.cfg.FollowGroupTagID)
		if err != nil {
			return nil, s.deps.settle(domain.SourceDynamic, err, &s.hasMore)
		}
		s.groupMids = make(map[int64]bool, len(mids))
		for _, mid := range mids {
			s.groupMids[mid] = true
		}
	}

	page, err := s.repo.GetDynamicFeed(ctx, domain.DynamicQuery{
		Page:    s.page + 1,
		Offset:  s.offset,
		HostMid: s.cfg.UpMid,
	})
	if err != nil {
		return nil, s.deps.settle(domain.SourceDynamic, err, &s.hasMore)
	}

	var prefix []domain.Item
	if s.page == 0 && s.cfg.ShowLive && s.cfg.UpMid == 0 && s.live != nil {
		prefix, err = s.livePrefix(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.page++
	s.offset = page.Offset
	s.hasMore = page.HasMore

	items := make([]domain.Item, 0, len(prefix)+len(page.Items))
	items = append(items, prefix...)
	for _, item := range page.Items {
		if s.groupMids != nil && !s.groupMids[item.AuthorMid] {
			continue
		}
		if minDuration > 0 && item.Duration < minDuration {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// livePrefix lists the followed rooms that are live now, framed by
// separators. Only cancellation is reported; other failures drop the prefix.
func (s *DynamicService) livePrefix(ctx context.Context) ([]domain.Item, error) {
	page, err := s.live.GetFollowingLive(ctx, 1)
	if err != nil {
		if domain.IsCanceled(err) {
			return nil, err
		}
		s.deps.Logger.Warn("live prefix unavailable", "error", err)
		return nil, nil
	}

	var living []domain.Item
	for _, room := range page.Items {
		if room.Living {
			living = append(living, room)
		}
	}
	if len(living) == 0 {
		return nil, nil
	}

	out := make([]domain.Item, 0, len(living)+2)
	out = append(out, domain.NewSeparator("dynamic-live", "正在直播"))
	out = append(out, living...)
	out = append(out, domain.NewSeparator("dynamic-feed", "动态"))
	return out, nil
}

func (s *DynamicService) UsageInfo() domain.UsageInfo {
	info := domain.UsageInfo{Title: "Dynamic feed"}
	if s.cfg.UpMid > 0 {
		info = info.Add("up", strconv.FormatInt(s.cfg.UpMid, 10))
	}
	if s.cfg.FollowGroupTagID > 0 {
		info = info.Add("group", strconv.FormatInt(s.cfg.FollowGroupTagID, 10))
	}
	if s.search != nil {
		info = info.Add("search", s.cfg.SearchText).
			Add("matches", strconv.Itoa(s.search.matches))
	}
	return info.Add("page", strconv.Itoa(s.page))
}
