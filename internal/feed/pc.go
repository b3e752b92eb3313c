package feed

import (
	"context"
	"strconv"

	"github.com/mmcdole/bilirec/internal/domain"
)

const pcPageSize = 14

// PcService pages the web recommendation feed by refresh counter.
type PcService struct {
	repo domain.RecommendRepository
	deps Deps

	freshIdx int
	hasMore  bool
}

// NewPcService creates a new web feed service
func NewPcService(repo domain.RecommendRepository, deps Deps) *PcService {
	return &PcService{repo: repo, deps: deps.WithDefaults(), hasMore: true}
}

func (s *PcService) Source() domain.Source { return domain.SourcePc }
func (s *PcService) HasMore() bool         { return s.hasMore }

func (s *PcService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if !s.hasMore {
		return nil, nil
	}

	cards, err := s.repo.GetPcRecommend(ctx, s.freshIdx+1, pcPageSize)
	if err != nil {
		return nil, s.deps.settle(domain.SourcePc, err, &s.hasMore)
	}

	s.freshIdx++
	if len(cards) == 0 {
		s.hasMore = false
		return nil, nil
	}

	items := make([]domain.Item, 0, len(cards))
	for _, card := range cards {
		// ads and live cards carry no bvid
		if card.Goto != "av" || card.Bvid == "" {
			continue
		}
		items = append(items, card)
	}
	return items, nil
}

func (s *PcService) UsageInfo() domain.UsageInfo {
	return domain.UsageInfo{Title: "PC recommendations"}.
		Add("page", strconv.Itoa(s.freshIdx))
}
