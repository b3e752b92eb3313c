package feed

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/mmcdole/bilirec/internal/domain"
)

const (
	hotPageSize = 20

	// newest weekly issues kept on top when shuffling, about two weeks
	weeklyRecentEpisodes = 2
)

// HotService serves one of the trending lists: the paged popular list,
// the weekly issues (one per call) or a single-shot ranking.
type HotService struct {
	repo      domain.HotRepository
	deps      Deps
	kind      domain.HotKind
	shuffle   bool
	rid       int
	prevOrder map[string]int

	page    int
	hasMore bool

	episodes     []domain.WeeklyEpisode
	episodeIdx   int
	seriesLoaded bool

	queue         *Queue[domain.Item]
	rankingLoaded bool
}

// NewHotService creates a trending list service. shuffle applies to the
// weekly issues, rid to the ranking.
func NewHotService(repo domain.HotRepository, kind domain.HotKind, shuffle bool, rid int, prevOrder map[string]int, deps Deps) *HotService {
	deps = deps.WithDefaults()
	return &HotService{
		repo:      repo,
		deps:      deps,
		kind:      kind,
		shuffle:   shuffle,
		rid:       rid,
		prevOrder: prevOrder,
		hasMore:   true,
		queue:     NewQueue[domain.Item](deps.PageSize),
	}
}

func (s *HotService) Source() domain.Source { return domain.SourceHot }

// Kind returns the trending list served
func (s *HotService) Kind() domain.HotKind { return s.kind }

func (s *HotService) HasMore() bool {
	return s.hasMore || s.queue.Buffered() > 0
}

func (s *HotService) HasCache() bool { return s.queue.HasCache() }
func (s *HotService) Restore()       { s.queue.Restore() }

// ShuffleSnapshot returns the weekly issue order
func (s *HotService) ShuffleSnapshot() map[string]int {
	if s.kind != domain.HotKindWeekly || !s.seriesLoaded {
		return nil
	}
	return IndexMap(s.episodes, episodeKey)
}

func episodeKey(e domain.WeeklyEpisode) string { return strconv.Itoa(e.Number) }

func (s *HotService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if s.queue.Buffered() > 0 {
		return s.queue.SlicePage(1), nil
	}
	if !s.hasMore {
		return nil, nil
	}

	switch s.kind {
	case domain.HotKindWeekly:
		return s.loadWeekly(ctx)
	case domain.HotKindRanking:
		return s.loadRanking(ctx)
	default:
		return s.loadPopular(ctx)
	}
}

func (s *HotService) loadPopular(ctx context.Context) ([]domain.Item, error) {
	res, err := s.repo.GetPopular(ctx, s.page+1, hotPageSize)
	if err != nil {
		return nil, s.deps.settle(domain.SourceHot, err, &s.hasMore)
	}
	s.page++
	s.hasMore = !res.NoMore && len(res.Items) > 0
	return s.queue.Return(asItems(res.Items)), nil
}

// loadWeekly releases one issue per call, headed by a separator
func (s *HotService) loadWeekly(ctx context.Context) ([]domain.Item, error) {
	if !s.seriesLoaded {
		episodes, err := s.repo.GetWeeklySeries(ctx)
		if err != nil {
			return nil, s.deps.settle(domain.SourceHot, err, &s.hasMore)
		}
		episodes = slices.Clone(episodes)
		slices.SortStableFunc(episodes, func(a, b domain.WeeklyEpisode) int { return b.Number - a.Number })
		if s.shuffle && len(episodes) > weeklyRecentEpisodes {
			recent := episodes[:weeklyRecentEpisodes]
			earlier := shuffleOrReplay(episodes[weeklyRecentEpisodes:], s.prevOrder, episodeKey, s.deps.Rand)
			episodes = append(slices.Clone(recent), earlier...)
		}
		s.episodes = episodes
		s.seriesLoaded = true
		if len(episodes) == 0 {
			s.hasMore = false
			return nil, nil
		}
	}

	ep := s.episodes[s.episodeIdx]
	items, err := s.repo.GetWeekly(ctx, ep.Number)
	if err != nil {
		return nil, s.deps.settle(domain.SourceHot, err, &s.hasMore)
	}
	s.episodeIdx++
	s.hasMore = s.episodeIdx < len(s.episodes)

	out := make([]domain.Item, 0, len(items)+1)
	out = append(out, domain.NewSeparator(
		fmt.Sprintf("hot-weekly-%d", ep.Number),
		fmt.Sprintf("第%d期 %s", ep.Number, ep.Subject),
	))
	out = append(out, asItems(items)...)
	return s.queue.Return(out), nil
}

func (s *HotService) loadRanking(ctx context.Context) ([]domain.Item, error) {
	if !s.rankingLoaded {
		items, err := s.repo.GetRanking(ctx, s.rid)
		if err != nil {
			return nil, s.deps.settle(domain.SourceHot, err, &s.hasMore)
		}
		s.queue.Push(asItems(items)...)
		s.rankingLoaded = true
		s.hasMore = false
	}
	return s.queue.SlicePage(1), nil
}

func (s *HotService) UsageInfo() domain.UsageInfo {
	info := domain.UsageInfo{Title: "Hot"}.Add("list", string(s.kind))
	switch s.kind {
	case domain.HotKindWeekly:
		info = info.Add("issue", strconv.Itoa(s.episodeIdx)+"/"+strconv.Itoa(len(s.episodes)))
		if s.shuffle {
			info = info.Add("order", "shuffle")
		}
	case domain.HotKindRanking:
		info = info.Add("rid", strconv.Itoa(s.rid))
	default:
		info = info.Add("page", strconv.Itoa(s.page))
	}
	return info
}
