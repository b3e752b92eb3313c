package feed

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

// entries added within this window count as recent and are never shuffled
const watchlaterRecentGate = 48 * time.Hour

// WatchlaterService fetches the whole watch-later list once and releases it
// page by page from its queue.
type WatchlaterService struct {
	repo         domain.WatchlaterRepository
	deps         Deps
	shuffle      bool
	addSeparator bool
	prevOrder    map[string]int

	queue   *Queue[domain.Item]
	fetched bool
	ended   bool
	total   int
	recent  int
	order   map[string]int
}

// NewWatchlaterService creates a watch-later service. prevOrder, when not
// nil, pins the shuffle to the order a previous service displayed.
func NewWatchlaterService(repo domain.WatchlaterRepository, shuffle, addSeparator bool, prevOrder map[string]int, deps Deps) *WatchlaterService {
	deps = deps.WithDefaults()
	return &WatchlaterService{
		repo:         repo,
		deps:         deps,
		shuffle:      shuffle,
		addSeparator: addSeparator,
		prevOrder:    prevOrder,
		queue:        NewQueue[domain.Item](deps.PageSize),
	}
}

func (s *WatchlaterService) Source() domain.Source { return domain.SourceWatchlater }

func (s *WatchlaterService) HasMore() bool {
	if s.ended {
		return false
	}
	return !s.fetched || s.queue.Buffered() > 0
}

func (s *WatchlaterService) HasCache() bool { return s.queue.HasCache() }
func (s *WatchlaterService) Restore()       { s.queue.Restore() }

// ShuffleSnapshot returns the bvid -> position map of the current order
func (s *WatchlaterService) ShuffleSnapshot() map[string]int { return s.order }

func (s *WatchlaterService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if !s.HasMore() {
		return nil, nil
	}

	if !s.fetched {
		items, err := s.repo.GetWatchlater(ctx)
		if err != nil {
			hasMore := true
			err = s.deps.settle(domain.SourceWatchlater, err, &hasMore)
			s.ended = !hasMore
			return nil, err
		}
		s.fill(items)
		s.fetched = true
	}

	return s.queue.SlicePage(1), nil
}

// fill orders the list and buffers it with its separators
func (s *WatchlaterService) fill(items []*domain.WatchlaterItem) {
	items = slices.Clone(items)
	slices.SortStableFunc(items, func(a, b *domain.WatchlaterItem) int {
		return b.AddAt.Compare(a.AddAt)
	})

	gate := s.deps.Now().Add(-watchlaterRecentGate)
	recent, earlier := SplitByGate(items, gate, func(i *domain.WatchlaterItem) time.Time { return i.AddAt })
	if s.shuffle {
		earlier = shuffleOrReplay(earlier, s.prevOrder, bvidOf[*domain.WatchlaterItem], s.deps.Rand)
	}

	if s.addSeparator && len(recent) > 0 {
		s.queue.Push(domain.NewSeparator("watchlater-recent", "近期"))
	}
	s.queue.Push(asItems(recent)...)
	if s.addSeparator && len(earlier) > 0 {
		s.queue.Push(domain.NewSeparator("watchlater-earlier", "更早"))
	}
	s.queue.Push(asItems(earlier)...)

	ordered := append(slices.Clone(recent), earlier...)
	s.order = IndexMap(ordered, bvidOf[*domain.WatchlaterItem])
	s.total = len(items)
	s.recent = len(recent)
}

func (s *WatchlaterService) UsageInfo() domain.UsageInfo {
	mode := "newest first"
	if s.shuffle {
		mode = "shuffle"
	}
	return domain.UsageInfo{Title: "Watch later"}.
		Add("total", strconv.Itoa(s.total)).
		Add("recent", strconv.Itoa(s.recent)).
		Add("order", mode)
}
