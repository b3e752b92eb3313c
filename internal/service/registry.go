package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/feed"
)

// Repositories is everything the feed services read from (consumer-defined
// interface, satisfied by the API client)
type Repositories interface {
	domain.RecommendRepository
	domain.DynamicRepository
	domain.WatchlaterRepository
	domain.FavRepository
	domain.LiveRepository
	domain.HotRepository
}

// Factory builds the service of a tab
type Factory struct {
	Repos Repositories
	Store domain.KVStore // optional
	Deps  feed.Deps
	Mid   int64 // owner of the favorites folders
}

// Build creates tab's service from a settings snapshot. prevOrder replays
// a previous shuffle when not nil.
func (f *Factory) Build(tab domain.Tab, s domain.Settings, prevOrder map[string]int) (feed.Service, error) {
	deps := f.Deps
	deps.PageSize = s.EffectivePageSize()
	switch tab {
	case domain.TabAppRecommend:
		return feed.NewAppService(f.Repos, deps), nil
	case domain.TabPcRecommend:
		return feed.NewPcService(f.Repos, deps), nil
	case domain.TabDynamicFeed:
		return feed.NewDynamicService(f.Repos, f.Repos, f.Store, s.Dynamic, deps), nil
	case domain.TabWatchlater:
		return feed.NewWatchlaterService(f.Repos, s.Watchlater.Shuffle, s.Watchlater.AddSeparator, prevOrder, deps), nil
	case domain.TabFav:
		return feed.NewFavService(f.Repos, f.Mid, s.Fav, prevOrder, deps), nil
	case domain.TabPopularGeneral:
		return feed.NewHotService(f.Repos, domain.HotKindGeneral, false, 0, nil, deps), nil
	case domain.TabPopularWeekly:
		return feed.NewHotService(f.Repos, domain.HotKindWeekly, s.Hot.WeeklyShuffle, 0, prevOrder, deps), nil
	case domain.TabRanking:
		return feed.NewHotService(f.Repos, domain.HotKindRanking, false, s.Hot.RankingRid, nil, deps), nil
	case domain.TabLive:
		return feed.NewLiveService(f.Repos, deps), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTab, tab)
	}
}

// ConfigKey captures the settings a tab's service is built from. A service
// is recreated when its key changes.
func (f *Factory) ConfigKey(tab domain.Tab, s domain.Settings) string {
	base := fmt.Sprintf("ps=%d", s.EffectivePageSize())
	switch tab {
	case domain.TabDynamicFeed:
		d := s.Dynamic
		return fmt.Sprintf("%s up=%d group=%d search=%q live=%t", base, d.UpMid, d.FollowGroupTagID, d.SearchText, d.ShowLive)
	case domain.TabWatchlater:
		return fmt.Sprintf("%s shuffle=%t sep=%t", base, s.Watchlater.Shuffle, s.Watchlater.AddSeparator)
	case domain.TabFav:
		excluded := slices.Clone(s.Fav.ExcludedFolderIDs)
		slices.Sort(excluded)
		return fmt.Sprintf("%s mid=%d shuffle=%t sep=%t folder=%d excluded=%v",
			base, f.Mid, s.Fav.Shuffle, s.Fav.AddSeparator, s.Fav.FolderID, excluded)
	case domain.TabPopularWeekly:
		return fmt.Sprintf("%s shuffle=%t", base, s.Hot.WeeklyShuffle)
	case domain.TabRanking:
		return fmt.Sprintf("%s rid=%d", base, s.Hot.RankingRid)
	default:
		return base
	}
}

type registryEntry struct {
	svc feed.Service
	key string
}

// EnsureOptions controls how Ensure treats an existing service
type EnsureOptions struct {
	// Reuse keeps the current service when its config is unchanged
	Reuse bool

	// KeepOrder hands the previous shuffle order to a recreated service
	KeepOrder bool
}

// Registry maps each tab to its live service instance
type Registry struct {
	factory *Factory

	mu      sync.Mutex
	entries map[domain.Tab]*registryEntry
}

// NewRegistry creates an empty registry
func NewRegistry(factory *Factory) *Registry {
	factory.Deps = factory.Deps.WithDefaults()
	return &Registry{
		factory: factory,
		entries: make(map[domain.Tab]*registryEntry),
	}
}

// Ensure returns tab's service, building a new one unless opts.Reuse is set
// and the config key still matches. created reports a fresh instance.
func (r *Registry) Ensure(tab domain.Tab, s domain.Settings, opts EnsureOptions) (svc feed.Service, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.factory.ConfigKey(tab, s)
	old := r.entries[tab]
	if old != nil && opts.Reuse && old.key == key {
		return old.svc, false, nil
	}

	var prevOrder map[string]int
	if old != nil {
		if sh, ok := old.svc.(feed.Shuffler); ok {
			if snap := sh.ShuffleSnapshot(); snap != nil {
				r.saveOrder(tab, snap)
				if opts.KeepOrder {
					prevOrder = snap
				}
			}
		}
	}
	if opts.KeepOrder && prevOrder == nil {
		prevOrder = r.loadOrder(tab)
	}

	svc, err = r.factory.Build(tab, s, prevOrder)
	if err != nil {
		return nil, false, err
	}
	r.entries[tab] = &registryEntry{svc: svc, key: key}
	r.factory.Deps.Logger.Debug("service created", "tab", tab, "key", key, "keepOrder", prevOrder != nil)
	return svc, true, nil
}

// Get returns tab's current service
func (r *Registry) Get(tab domain.Tab) (feed.Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[tab]
	if !ok {
		return nil, false
	}
	return e.svc, true
}

// MustGet returns tab's service and panics when none was built; asking for
// a tab that was never refreshed is a programming error.
func (r *Registry) MustGet(tab domain.Tab) feed.Service {
	svc, ok := r.Get(tab)
	if !ok {
		panic(fmt.Sprintf("service: no service registered for tab %q", tab))
	}
	return svc
}

// Drop forgets tab's service, keeping its shuffle order for a later KeepOrder
func (r *Registry) Drop(tab domain.Tab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[tab]; ok {
		if sh, ok := e.svc.(feed.Shuffler); ok {
			if snap := sh.ShuffleSnapshot(); snap != nil {
				r.saveOrder(tab, snap)
			}
		}
		delete(r.entries, tab)
	}
}

func (r *Registry) saveOrder(tab domain.Tab, order map[string]int) {
	if r.factory.Store == nil {
		return
	}
	if err := r.factory.Store.Set(shuffleKey(tab), order); err != nil {
		r.factory.Deps.Logger.Warn("failed to save shuffle order", "tab", tab, "error", err)
	}
}

func (r *Registry) loadOrder(tab domain.Tab) map[string]int {
	if r.factory.Store == nil {
		return nil
	}
	var order map[string]int
	if !r.factory.Store.Get(shuffleKey(tab), &order) {
		return nil
	}
	return order
}
