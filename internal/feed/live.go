package feed

import (
	"context"
	"strconv"

	"github.com/mmcdole/bilirec/internal/domain"
)

// LiveService pages the followed live rooms. Upstream lists living rooms
// first, so once an offline room shows up the rest are offline too.
type LiveService struct {
	repo domain.LiveRepository
	deps Deps

	page           int
	totalPage      int
	hasMore        bool
	separatorAdded bool
	living         int
}

// NewLiveService creates a new live room service
func NewLiveService(repo domain.LiveRepository, deps Deps) *LiveService {
	return &LiveService{repo: repo, deps: deps.WithDefaults(), hasMore: true}
}

func (s *LiveService) Source() domain.Source { return domain.SourceLive }
func (s *LiveService) HasMore() bool         { return s.hasMore }

func (s *LiveService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if !s.hasMore {
		return nil, nil
	}
	showRecent := s.deps.Settings.Snapshot().Live.ShowRecent

	res, err := s.repo.GetFollowingLive(ctx, s.page+1)
	if err != nil {
		return nil, s.deps.settle(domain.SourceLive, err, &s.hasMore)
	}

	s.page++
	s.totalPage = res.TotalPage
	s.hasMore = s.page < s.totalPage && len(res.Items) > 0

	items := make([]domain.Item, 0, len(res.Items)+1)
	for _, room := range res.Items {
		if room.Living {
			s.living++
			items = append(items, room)
			continue
		}
		if !showRecent {
			s.hasMore = false
			break
		}
		if !s.separatorAdded {
			items = append(items, domain.NewSeparator("live-recent", "最近直播过"))
			s.separatorAdded = true
		}
		items = append(items, room)
	}
	return items, nil
}

func (s *LiveService) UsageInfo() domain.UsageInfo {
	return domain.UsageInfo{Title: "Live"}.
		Add("living", strconv.Itoa(s.living)).
		Add("page", strconv.Itoa(s.page)+"/"+strconv.Itoa(s.totalPage))
}
