package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/feed"
	"github.com/mmcdole/bilirec/internal/store"
)

func newTestRegistry(t *testing.T, repos *fakeRepos, kv domain.KVStore) *Registry {
	t.Helper()
	c, _, _ := newTestController(repos, kv)
	return c.registry
}

func TestEnsureReusesUntilConfigChanges(t *testing.T) {
	r := newTestRegistry(t, &fakeRepos{}, nil)
	s := domain.DefaultSettings()

	first, created, err := r.Ensure(domain.TabWatchlater, s, EnsureOptions{Reuse: true})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := r.Ensure(domain.TabWatchlater, s, EnsureOptions{Reuse: true})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)

	s.Watchlater.Shuffle = true
	changed, created, err := r.Ensure(domain.TabWatchlater, s, EnsureOptions{Reuse: true})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, first, changed)

	// unrelated settings do not touch the key
	s.Dynamic.SearchText = "x"
	_, created, err = r.Ensure(domain.TabWatchlater, s, EnsureOptions{Reuse: true})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureWithoutReuseAlwaysRebuilds(t *testing.T) {
	r := newTestRegistry(t, &fakeRepos{}, nil)
	s := domain.DefaultSettings()

	first, _, err := r.Ensure(domain.TabAppRecommend, s, EnsureOptions{})
	require.NoError(t, err)
	second, created, err := r.Ensure(domain.TabAppRecommend, s, EnsureOptions{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, first, second)
}

func TestKeepOrderHandsOverShuffle(t *testing.T) {
	repos := &fakeRepos{watchlater: watchlaterItems(20)}
	kv, err := store.NewKVStore("")
	require.NoError(t, err)
	r := newTestRegistry(t, repos, kv)

	s := domain.DefaultSettings()
	s.PageSize = 50
	s.Watchlater.Shuffle = true
	s.Watchlater.AddSeparator = false

	svc, _, err := r.Ensure(domain.TabWatchlater, s, EnsureOptions{})
	require.NoError(t, err)
	shown, err := svc.LoadMore(context.Background())
	require.NoError(t, err)

	// separators toggled: recreated, but the order is replayed
	s.Watchlater.AddSeparator = true
	next, created, err := r.Ensure(domain.TabWatchlater, s, EnsureOptions{Reuse: true, KeepOrder: true})
	require.NoError(t, err)
	require.True(t, created)
	replayed, err := next.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids(shown), ids(replayed[1:]))

	// the order survives in the store for a later session
	var saved map[string]int
	require.True(t, kv.Get(shuffleKey(domain.TabWatchlater), &saved))
	assert.Len(t, saved, 20)

	r2 := newTestRegistry(t, repos, kv)
	fresh, _, err := r2.Ensure(domain.TabWatchlater, s, EnsureOptions{KeepOrder: true})
	require.NoError(t, err)
	fromStore, err := fresh.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids(shown), ids(fromStore[1:]))
}

func TestMustGetPanicsForUnknownTab(t *testing.T) {
	r := newTestRegistry(t, &fakeRepos{}, nil)
	assert.Panics(t, func() { r.MustGet(domain.TabLive) })

	_, _, err := r.Ensure(domain.TabLive, domain.DefaultSettings(), EnsureOptions{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { r.MustGet(domain.TabLive) })

	r.Drop(domain.TabLive)
	_, ok := r.Get(domain.TabLive)
	assert.False(t, ok)
}

func TestBuildCoversEveryTab(t *testing.T) {
	f := &Factory{Repos: &fakeRepos{}, Deps: feed.Deps{}.WithDefaults()}
	for _, tab := range domain.AllTabs() {
		svc, err := f.Build(tab, domain.DefaultSettings(), nil)
		require.NoError(t, err, tab)
		assert.Equal(t, tab.Source(), svc.Source(), tab)
	}
}

func TestEnsureSizesQueueFromSnapshot(t *testing.T) {
	repos := &fakeRepos{watchlater: watchlaterItems(40)}
	r := newTestRegistry(t, repos, nil)

	s := domain.DefaultSettings()
	s.PageSize = 30
	s.Watchlater.AddSeparator = false

	svc, _, err := r.Ensure(domain.TabWatchlater, s, EnsureOptions{})
	require.NoError(t, err)
	items, err := svc.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 30, "the live settings still hold the default page size")
}
