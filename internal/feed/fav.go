package feed

import (
	"context"
	"slices"
	"strconv"

	"github.com/sourcegraph/conc/pool"

	"github.com/mmcdole/bilirec/internal/domain"
)

// folders fetched at the same time during a shuffle round
const favShuffleConcurrency = 2

// FavService merges every favorites folder of the user. Sequentially it
// walks the folders in order; in shuffle mode it fills its queue from a
// random subset of folders per round.
type FavService struct {
	repo      domain.FavRepository
	deps      Deps
	mid       int64
	cfg       domain.FavSettings
	prevOrder map[string]int

	// Concurrency caps the folder requests running during a shuffle round
	Concurrency int

	loaded  bool
	ended   bool
	folders []domain.FavFolder
	subs    []*FavFolderService
	current int

	queue *Queue[domain.Item]
}

// NewFavService creates the aggregated favorites service for mid
func NewFavService(repo domain.FavRepository, mid int64, cfg domain.FavSettings, prevOrder map[string]int, deps Deps) *FavService {
	deps = deps.WithDefaults()
	return &FavService{
		repo:        repo,
		deps:        deps,
		mid:         mid,
		cfg:         cfg,
		prevOrder:   prevOrder,
		Concurrency: favShuffleConcurrency,
		queue:       NewQueue[domain.Item](deps.PageSize),
	}
}

func (s *FavService) Source() domain.Source { return domain.SourceFav }

func (s *FavService) HasMore() bool {
	if s.ended {
		return false
	}
	if !s.loaded || s.queue.Buffered() > 0 {
		return true
	}
	return slices.ContainsFunc(s.subs, (*FavFolderService).HasMore)
}

func (s *FavService) HasCache() bool {
	if d := s.delegate(); d != nil {
		return d.HasCache()
	}
	return s.queue.HasCache()
}

func (s *FavService) Restore() {
	if d := s.delegate(); d != nil {
		d.Restore()
		return
	}
	s.queue.Restore()
	if !s.cfg.Shuffle {
		for _, sub := range s.subs {
			sub.Restore()
		}
		s.current = 0
	}
}

func (s *FavService) ShuffleSnapshot() map[string]int {
	if d := s.delegate(); d != nil {
		return d.ShuffleSnapshot()
	}
	return nil
}

// delegate returns the folder service when exactly one folder is shown
func (s *FavService) delegate() *FavFolderService {
	if len(s.subs) == 1 {
		return s.subs[0]
	}
	return nil
}

// Folders returns the folders being merged
func (s *FavService) Folders() []domain.FavFolder { return s.folders }

func (s *FavService) LoadMore(ctx context.Context) ([]domain.Item, error) {
	if !s.HasMore() {
		return nil, nil
	}

	if !s.loaded {
		if err := s.loadFolders(ctx); err != nil {
			return nil, err
		}
		if s.ended {
			return nil, nil
		}
	}

	if d := s.delegate(); d != nil {
		return d.LoadMore(ctx)
	}
	if s.cfg.Shuffle {
		return s.loadShuffled(ctx)
	}
	return s.loadSequential(ctx)
}

func (s *FavService) loadFolders(ctx context.Context) error {
	folders, err := s.repo.GetFavFolders(ctx, s.mid)
	if err != nil {
		hasMore := true
		err = s.deps.settle(domain.SourceFav, err, &hasMore)
		s.ended = !hasMore
		return err
	}

	for _, f := range folders {
		if slices.Contains(s.cfg.ExcludedFolderIDs, f.ID) {
			continue
		}
		if s.cfg.FolderID != 0 && f.ID != s.cfg.FolderID {
			continue
		}
		s.folders = append(s.folders, f)
	}

	single := len(s.folders) == 1
	for _, f := range s.folders {
		// a lone folder shuffles itself; merged folders are shuffled here
		shuffle := single && s.cfg.Shuffle
		var prev map[string]int
		if single {
			prev = s.prevOrder
		}
		s.subs = append(s.subs, NewFavFolderService(s.repo, f, shuffle, s.cfg.AddSeparator, prev, s.deps))
	}

	s.loaded = true
	s.ended = len(s.subs) == 0
	s.deps.Logger.Debug("fav folders loaded", "total", len(folders), "kept", len(s.subs))
	return nil
}

// loadSequential drains the folders one after another
func (s *FavService) loadSequential(ctx context.Context) ([]domain.Item, error) {
	for s.current < len(s.subs) {
		sub := s.subs[s.current]
		if !sub.HasMore() {
			s.current++
			continue
		}
		return sub.LoadMore(ctx)
	}
	return nil, nil
}

// loadShuffled runs fill rounds until a page is buffered or every folder is
// drained, then releases one page.
func (s *FavService) loadShuffled(ctx context.Context) ([]domain.Item, error) {
	for s.queue.Buffered() < s.queue.PageSize() {
		var open []*FavFolderService
		for _, sub := range s.subs {
			if sub.hasMore {
				open = append(open, sub)
			}
		}
		if len(open) == 0 {
			break
		}

		picked := Shuffle(open, s.deps.Rand)
		picked = picked[:min(len(picked), max(s.Concurrency, 1))]

		batch, err := s.fillRound(ctx, picked)
		s.queue.Push(asItems(Shuffle(batch, s.deps.Rand))...)
		if err != nil {
			return nil, err
		}
	}
	return s.queue.SlicePage(1), nil
}

// fillRound fetches one page from each picked folder, at most Concurrency
// at a time. Pages that succeeded are returned even when another failed;
// their folders already advanced, so dropping them would lose favorites.
func (s *FavService) fillRound(ctx context.Context, picked []*FavFolderService) ([]*domain.FavItem, error) {
	p := pool.NewWithResults[[]*domain.FavItem]().
		WithContext(ctx).
		WithCollectErrored().
		WithMaxGoroutines(max(s.Concurrency, 1))
	for _, sub := range picked {
		p.Go(func(ctx context.Context) ([]*domain.FavItem, error) {
			return sub.fetchPage(ctx)
		})
	}

	pages, err := p.Wait()
	var batch []*domain.FavItem
	for _, page := range pages {
		batch = append(batch, page...)
	}
	return batch, err
}

func (s *FavService) UsageInfo() domain.UsageInfo {
	if d := s.delegate(); d != nil {
		return d.UsageInfo()
	}
	total := 0
	for _, f := range s.folders {
		total += f.MediaCount
	}
	mode := "by folder"
	if s.cfg.Shuffle {
		mode = "shuffle"
	}
	return domain.UsageInfo{Title: "Favorites"}.
		Add("folders", strconv.Itoa(len(s.folders))).
		Add("videos", strconv.Itoa(total)).
		Add("order", mode)
}
