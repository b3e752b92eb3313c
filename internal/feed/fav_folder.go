package feed

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

const (
	favPageSize = 20

	// favorites added within this window stay on top in shuffle mode
	favRecentGate = 14 * 24 * time.Hour
)

// FavFolderService pages a single favorites folder. In shuffle mode it
// loads every page on the first call and releases the shuffled list from
// its queue.
type FavFolderService struct {
	repo         domain.FavRepository
	deps         Deps
	folder       domain.FavFolder
	shuffle      bool
	addSeparator bool
	prevOrder    map[string]int

	page           int
	hasMore        bool
	separatorAdded bool

	queue     *Queue[domain.Item]
	collected []*domain.FavItem
	loadedAll bool
	order     map[string]int
}

// NewFavFolderService creates a service for one folder
func NewFavFolderService(repo domain.FavRepository, folder domain.FavFolder, shuffle, addSeparator bool, prevOrder map[string]int, deps Deps) *FavFolderService {
	deps = deps.WithDefaults()
	return &FavFolderService{
		repo:         repo,
		deps:         deps,
		folder:       folder,
		shuffle:      shuffle,
		addSeparator: addSeparator,
		prevOrder:    prevOrder,
		hasMore:      true,
		queue:        NewQueue[domain.Item](deps.PageSize),
	}
}

func (s *FavFolderService) Source() domain.Source { return domain.SourceFav }

// Folder returns the folder this service pages
func (s *FavFolderService) Folder() domain.FavFolder { return s.folder }

func (s *FavFolderService) HasMore() bool {
	if s.shuffle && s.loadedAll {
		return s.queue.Buffered() > 0
	}
	return s.hasMore || s.queue.Buffered() > 0
}

func (s *FavFolderService) HasCache() bool { return s.queue.HasCache() }
func (s *FavFolderService) Restore()       { s.queue.Restore() }

func (s *FavFolderService) ShuffleSnapshot() map[string]int { return s.order }

// fetchPage loads the next upstream page and drops deleted videos. An
// upstream error code ends the folder without an error.
func (s *FavFolderService) fetchPage(ctx context.Context) ([]*domain.FavItem, error) {
	if !s.hasMore {
		return nil, nil
	}

	res, err := s.repo.GetFavResources(ctx, s.folder.ID, s.page+1, favPageSize)
	if err != nil {
		return nil, s.deps.settle(domain.SourceFav, err, &s.hasMore)
	}

	s.page++
	s.hasMore = res.HasMore && len(res.Items) > 0

	items := make([]*domain.FavItem, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Invalid() {
			continue
		}
		if item.FolderTitle == "" {
			item.FolderTitle = s.folder.Title
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *FavFolderService) separator() *domain.Separator {
	return domain.NewSeparator("fav-folder-"+strconv.FormatInt(s.folder.ID, 10), s.folder.Title)
}

func (s *FavFolderService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if s.shuffle {
		return s.loadShuffled(ctx)
	}
	if s.queue.Buffered() > 0 {
		return s.queue.SlicePage(1), nil
	}

	items, err := s.fetchPage(ctx)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	out := make([]domain.Item, 0, len(items)+1)
	if s.addSeparator && !s.separatorAdded {
		out = append(out, s.separator())
		s.separatorAdded = true
	}
	out = append(out, asItems(items)...)
	return s.queue.Return(out), nil
}

// loadShuffled collects every page, keeps the recent favorites in order
// and shuffles the rest. Pages fetched before a failure are kept so a retry
// resumes where it stopped.
func (s *FavFolderService) loadShuffled(ctx context.Context) ([]domain.Item, error) {
	if !s.loadedAll {
		for s.hasMore {
			items, err := s.fetchPage(ctx)
			if err != nil {
				return nil, err
			}
			s.collected = append(s.collected, items...)
		}

		slices.SortStableFunc(s.collected, func(a, b *domain.FavItem) int {
			return b.FavTime.Compare(a.FavTime)
		})
		gate := s.deps.Now().Add(-favRecentGate)
		recent, earlier := SplitByGate(s.collected, gate, func(i *domain.FavItem) time.Time { return i.FavTime })
		earlier = shuffleOrReplay(earlier, s.prevOrder, bvidOf[*domain.FavItem], s.deps.Rand)

		if s.addSeparator && len(s.collected) > 0 {
			s.queue.Push(s.separator())
			s.separatorAdded = true
		}
		s.queue.Push(asItems(recent)...)
		s.queue.Push(asItems(earlier)...)

		s.order = IndexMap(append(recent, earlier...), bvidOf[*domain.FavItem])
		s.collected = nil
		s.loadedAll = true
	}
	return s.queue.SlicePage(1), nil
}

func (s *FavFolderService) UsageInfo() domain.UsageInfo {
	mode := "newest first"
	if s.shuffle {
		mode = "shuffle"
	}
	return domain.UsageInfo{Title: s.folder.Title}.
		Add("videos", strconv.Itoa(s.folder.MediaCount)).
		Add("order", mode)
}
