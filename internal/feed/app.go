package feed

import (
	"context"
	"strconv"

	"github.com/mmcdole/bilirec/internal/domain"
)

// AppService pages the app-style recommendation feed by card idx.
type AppService struct {
	repo domain.RecommendRepository
	deps Deps

	idx     int64
	hasMore bool
}

// NewAppService creates a new app feed service
func NewAppService(repo domain.RecommendRepository, deps Deps) *AppService {
	return &AppService{repo: repo, deps: deps.WithDefaults(), hasMore: true}
}

func (s *AppService) Source() domain.Source { return domain.SourceApp }
func (s *AppService) HasMore() bool         { return s.hasMore }

// LoadMore fetches the next page and keeps only video cards
func (s *AppService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if !s.hasMore {
		return nil, nil
	}

	page, err := s.repo.GetAppRecommend(ctx, s.idx)
	if err != nil {
		return nil, s.deps.settle(domain.SourceApp, err, &s.hasMore)
	}

	s.idx = page.NextIdx
	if len(page.Items) == 0 {
		s.hasMore = false
		return nil, nil
	}

	items := make([]domain.Item, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Goto != "av" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *AppService) UsageInfo() domain.UsageInfo {
	return domain.UsageInfo{Title: "App recommendations"}.
		Add("idx", strconv.FormatInt(s.idx, 10))
}
