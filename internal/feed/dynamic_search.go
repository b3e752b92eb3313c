package feed

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/bilirec/internal/domain"
)

const (
	// DynamicCachePrefix namespaces the cached dynamics of each uploader
	DynamicCachePrefix = "dynamic-feed:cache:"

	// upper bound of pages walked per refresh of the cache
	dynamicSearchMaxPages = 100

	// cached dynamics kept per uploader
	dynamicCacheLimit = 5000
)

// dynamicCache is the persisted list of one uploader's video dynamics,
// newest first.
type dynamicCache struct {
	Items     []*domain.DynamicItem `json:"items"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// DynamicCacheKey returns the store key of an uploader's cached dynamics
func DynamicCacheKey(mid int64) string {
	return DynamicCachePrefix + strconv.FormatInt(mid, 10)
}

// dynamicSearch serves one uploader's dynamics matching a text. The cache is
// brought up to date from the head of the feed the first time the service
// loads, then matches are released from a queue.
type dynamicSearch struct {
	repo  domain.DynamicRepository
	store domain.KVStore
	deps  Deps
	mid   int64
	text  string

	queue   *Queue[domain.Item]
	loaded  bool
	failed  bool
	matches int
}

func newDynamicSearch(repo domain.DynamicRepository, store domain.KVStore, mid int64, text string, deps Deps) *dynamicSearch {
	return &dynamicSearch{
		repo:  repo,
		store: store,
		deps:  deps,
		mid:   mid,
		text:  text,
		queue: NewQueue[domain.Item](deps.PageSize),
	}
}

func (d *dynamicSearch) hasMore() bool {
	if d.failed {
		return false
	}
	return !d.loaded || d.queue.Buffered() > 0
}

func (d *dynamicSearch) loadMore(ctx context.Context) ([]domain.Item, error) {
	if !d.hasMore() {
		return nil, nil
	}
	if !d.loaded {
		all, err := d.sync(ctx)
		if err != nil {
			hasMore := true
			err = d.deps.settle(domain.SourceDynamic, err, &hasMore)
			d.failed = !hasMore
			return nil, err
		}
		for _, item := range all {
			if d.match(item) {
				d.queue.Push(item)
				d.matches++
			}
		}
		d.loaded = true
	}
	return d.queue.SlicePage(1), nil
}

func (d *dynamicSearch) match(item *domain.DynamicItem) bool {
	return fuzzy.MatchNormalizedFold(d.text, item.Title) ||
		strings.Contains(strings.ToLower(item.Desc), strings.ToLower(d.text))
}

// sync fetches pages from the head until it reaches a dynamic that is
// already cached, then stores new ++ cached. The cache is never trusted
// beyond its newest entry, so staleness is bounded by one refresh.
func (d *dynamicSearch) sync(ctx context.Context) ([]*domain.DynamicItem, error) {
	var cached dynamicCache
	if d.store != nil {
		d.store.Get(DynamicCacheKey(d.mid), &cached)
	}
	known := make(map[string]bool, len(cached.Items))
	for _, item := range cached.Items {
		known[item.ID] = true
	}

	var fresh []*domain.DynamicItem
	offset := ""
walk:
	for page := 1; page <= dynamicSearchMaxPages; page++ {
		res, err := d.repo.GetDynamicFeed(ctx, domain.DynamicQuery{Page: page, Offset: offset, HostMid: d.mid})
		if err != nil {
			return nil, err
		}
		for _, item := range res.Items {
			if known[item.ID] {
				break walk
			}
			fresh = append(fresh, item)
		}
		if !res.HasMore {
			break
		}
		offset = res.Offset
	}

	all := append(fresh, cached.Items...)
	if len(all) > dynamicCacheLimit {
		all = all[:dynamicCacheLimit]
	}

	d.deps.Logger.Debug("dynamic cache synced", "mid", d.mid, "new", len(fresh), "total", len(all))
	if d.store != nil && len(fresh) > 0 {
		if err := d.store.Set(DynamicCacheKey(d.mid), dynamicCache{Items: all, UpdatedAt: d.deps.Now()}); err != nil {
			d.deps.Logger.Warn("failed to save dynamic cache", "mid", d.mid, "error", err)
		}
	}
	return all, nil
}
