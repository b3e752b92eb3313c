package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
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

func testDeps(settings domain.Settings, n domain.Notifier) Deps {
	return Deps{
		Settings: StaticSettings(settings),
		Notifier: n,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return testNow },
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
}

func video(bvid string) domain.Video {
	return domain.Video{Bvid: bvid, Title: "title " + bvid, AuthorName: "up"}
}

// fakeDynamic serves scripted dynamic pages keyed by page number
type fakeDynamic struct {
	pages  map[int]*domain.DynamicPage
	err    error
	mids   []int64
	calls  []domain.DynamicQuery
	groups int
}

func (f *fakeDynamic) GetDynamicFeed(ctx context.Context, q domain.DynamicQuery) (*domain.DynamicPage, error) {
	f.calls = append(f.calls, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[q.Page]
	if !ok {
		return &domain.DynamicPage{}, nil
	}
	return page, nil
}

func (f *fakeDynamic) GetFollowGroupMids(ctx context.Context, tagID int64) ([]int64, error) {
	f.groups++
	return f.mids, nil
}

func dynamicItem(id string, mid int64, d time.Duration) *domain.DynamicItem {
	v := video("BV" + id)
	v.AuthorMid = mid
	v.Duration = d
	return &domain.DynamicItem{ID: "dynamic-" + id, Video: v, DynamicID: id}
}

type fakeLive struct {
	pages map[int]*domain.LivePage
	err   error
	calls int
}

func (f *fakeLive) GetFollowingLive(ctx context.Context, page int) (*domain.LivePage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &domain.LivePage{}, nil
}

func liveRoom(id int64, living bool) *domain.LiveItem {
	return &domain.LiveItem{ID: fmt.Sprintf("live-%d", id), RoomID: id, Living: living}
}

type fakeWatchlater struct {
	items []*domain.WatchlaterItem
	err   error
	calls int
}

func (f *fakeWatchlater) GetWatchlater(ctx context.Context) ([]*domain.WatchlaterItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func watchlaterItem(bvid string, addedAgo time.Duration) *domain.WatchlaterItem {
	return &domain.WatchlaterItem{ID: "watchlater-" + bvid, Video: video(bvid), AddAt: testNow.Add(-addedAgo)}
}

// fakeFav serves folders of n items each in pages, tracking concurrency
type fakeFav struct {
	folders  []domain.FavFolder
	items    map[int64][]*domain.FavItem
	delay    time.Duration
	errFor   map[int64]error
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	requests map[int64]int
}

func newFakeFav(perFolder int, ids ...int64) *fakeFav {
	f := &fakeFav{items: map[int64][]*domain.FavItem{}, requests: map[int64]int{}, errFor: map[int64]error{}}
	for _, id := range ids {
		f.folders = append(f.folders, domain.FavFolder{ID: id, Title: fmt.Sprintf("folder %d", id), MediaCount: perFolder})
		for i := 0; i < perFolder; i++ {
			bvid := fmt.Sprintf("BV%d-%d", id, i)
			f.items[id] = append(f.items[id], &domain.FavItem{
				ID:       "fav-" + bvid,
				Video:    video(bvid),
				FolderID: id,
				FavTime:  testNow.Add(-time.Duration(i+1) * 24 * time.Hour),
			})
		}
	}
	return f
}

func (f *fakeFav) GetFavFolders(ctx context.Context, mid int64) ([]domain.FavFolder, error) {
	return f.folders, nil
}

func (f *fakeFav) GetFavResources(ctx context.Context, folderID int64, page, pageSize int) (*domain.FavPage, error) {
	f.mu.Lock()
	f.inFlight++
	f.maxSeen = max(f.maxSeen, f.inFlight)
	f.requests[folderID]++
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.errFor[folderID]; err != nil {
		return nil, err
	}

	all := f.items[folderID]
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	return &domain.FavPage{Items: all[start:end], HasMore: end < len(all)}, nil
}

func (f *fakeFav) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSeen
}

type fakeHot struct {
	popular  map[int]*domain.HotPage
	episodes []domain.WeeklyEpisode
	weekly   map[int][]*domain.HotItem
	ranking  []*domain.HotItem
	err      error
}

func (f *fakeHot) GetPopular(ctx context.Context, page, pageSize int) (*domain.HotPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.popular[page]; ok {
		return p, nil
	}
	return &domain.HotPage{NoMore: true}, nil
}

func (f *fakeHot) GetWeeklySeries(ctx context.Context) ([]domain.WeeklyEpisode, error) {
	return f.episodes, nil
}

func (f *fakeHot) GetWeekly(ctx context.Context, number int) ([]*domain.HotItem, error) {
	return f.weekly[number], nil
}

func (f *fakeHot) GetRanking(ctx context.Context, rid int) ([]*domain.HotItem, error) {
	return f.ranking, nil
}

func hotItem(bvid string, kind domain.HotKind) *domain.HotItem {
	return &domain.HotItem{ID: "hot-" + bvid, Video: video(bvid), Kind: kind}
}

type fakeRecommend struct {
	app   map[int64]*domain.AppPage
	pc    map[int][]*domain.PcItem
	err   error
	calls int
}

func (f *fakeRecommend) GetAppRecommend(ctx context.Context, idx int64) (*domain.AppPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.app[idx]; ok {
		return p, nil
	}
	return &domain.AppPage{NextIdx: idx}, nil
}

func (f *fakeRecommend) GetPcRecommend(ctx context.Context, freshIdx, pageSize int) ([]*domain.PcItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pc[freshIdx], nil
}

func uniqIDs(items []domain.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UniqID())
	}
	return ids
}
