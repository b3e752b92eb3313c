package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/feed"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Toast(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// fakeRepos implements Repositories. App pages are produced by appPage;
// the other feeds serve fixed data.
type fakeRepos struct {
	mu       sync.Mutex
	appCalls int
	appPage  func(ctx context.Context, idx int64) (*domain.AppPage, error)
	pcErr    error

	watchlater      []*domain.WatchlaterItem
	watchlaterCalls int
}

func (f *fakeRepos) AppCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appCalls
}

func (f *fakeRepos) GetAppRecommend(ctx context.Context, idx int64) (*domain.AppPage, error) {
	f.mu.Lock()
	f.appCalls++
	fn := f.appPage
	f.mu.Unlock()
	if fn == nil {
		return appPage(idx, 5), nil
	}
	return fn(ctx, idx)
}

// appPage returns n video cards numbered after idx
func appPage(idx int64, n int) *domain.AppPage {
	page := &domain.AppPage{NextIdx: idx + int64(n)}
	for i := int64(1); i <= int64(n); i++ {
		page.Items = append(page.Items, &domain.AppItem{
			ID:    fmt.Sprintf("app-%d", idx+i),
			Goto:  "av",
			Idx:   idx + i,
			Video: domain.Video{Bvid: fmt.Sprintf("BV%d", idx+i)},
		})
	}
	return page
}

func (f *fakeRepos) GetPcRecommend(ctx context.Context, freshIdx, pageSize int) ([]*domain.PcItem, error) {
	if f.pcErr != nil {
		return nil, f.pcErr
	}
	var items []*domain.PcItem
	for i := 0; i < pageSize; i++ {
		bvid := fmt.Sprintf("BVpc%d-%d", freshIdx, i)
		items = append(items, &domain.PcItem{ID: "pc-" + bvid, Goto: "av", Video: domain.Video{Bvid: bvid}})
	}
	return items, nil
}

func (f *fakeRepos) GetDynamicFeed(ctx context.Context, q domain.DynamicQuery) (*domain.DynamicPage, error) {
	return &domain.DynamicPage{}, nil
}

func (f *fakeRepos) GetFollowGroupMids(ctx context.Context, tagID int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeRepos) GetWatchlater(ctx context.Context) ([]*domain.WatchlaterItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchlaterCalls++
	return f.watchlater, nil
}

func (f *fakeRepos) GetFavFolders(ctx context.Context, mid int64) ([]domain.FavFolder, error) {
	return nil, nil
}

func (f *fakeRepos) GetFavResources(ctx context.Context, folderID int64, page, pageSize int) (*domain.FavPage, error) {
	return &domain.FavPage{}, nil
}

func (f *fakeRepos) GetFollowingLive(ctx context.Context, page int) (*domain.LivePage, error) {
	return &domain.LivePage{}, nil
}

func (f *fakeRepos) GetPopular(ctx context.Context, page, pageSize int) (*domain.HotPage, error) {
	return &domain.HotPage{NoMore: true}, nil
}

func (f *fakeRepos) GetWeeklySeries(ctx context.Context) ([]domain.WeeklyEpisode, error) {
	return nil, nil
}

func (f *fakeRepos) GetWeekly(ctx context.Context, number int) ([]*domain.HotItem, error) {
	return nil, nil
}

func (f *fakeRepos) GetRanking(ctx context.Context, rid int) ([]*domain.HotItem, error) {
	return nil, nil
}

func watchlaterItems(n int) []*domain.WatchlaterItem {
	var items []*domain.WatchlaterItem
	for i := 0; i < n; i++ {
		bvid := fmt.Sprintf("BVwl%d", i)
		items = append(items, &domain.WatchlaterItem{
			ID:    "watchlater-" + bvid,
			Video: domain.Video{Bvid: bvid},
			AddAt: testNow.Add(-time.Duration(i+72) * time.Hour),
		})
	}
	return items
}

type testSettings struct {
	mu sync.Mutex
	s  domain.Settings
}

func (t *testSettings) Snapshot() domain.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s.Clone()
}

func (t *testSettings) Update(fn func(*domain.Settings)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.s)
}

func newTestController(repos *fakeRepos, store domain.KVStore) (*Controller, *testSettings, *recordingNotifier) {
	settings := &testSettings{s: domain.DefaultSettings()}
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := NewRegistry(&Factory{
		Repos: repos,
		Store: store,
		Mid:   1,
		Deps: feed.Deps{
			Settings: settings,
			Notifier: notifier,
			Logger:   logger,
			Now:      func() time.Time { return testNow },
			Rand:     rand.New(rand.NewPCG(1, 2)),
		},
	})
	return NewController(registry, settings, notifier, logger), settings, notifier
}

func ids(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.UniqID())
	}
	return out
}
