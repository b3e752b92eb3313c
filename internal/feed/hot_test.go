package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/domain"
)

func TestHotPopularPagesUntilNoMore(t *testing.T) {
	repo := &fakeHot{popular: map[int]*domain.HotPage{
		1: {Items: []*domain.HotItem{hotItem("a", domain.HotKindGeneral)}},
		2: {Items: []*domain.HotItem{hotItem("b", domain.HotKindGeneral)}, NoMore: true},
	}}
	s := NewHotService(repo, domain.HotKindGeneral, false, 0, nil, testDeps(domain.DefaultSettings(), nil))

	assert.Equal(t, []string{"hot-a", "hot-b"}, uniqIDs(drain(t, s)))
}

func TestHotWeeklyOneIssuePerCallNewestFirst(t *testing.T) {
	repo := &fakeHot{
		episodes: []domain.WeeklyEpisode{{Number: 1, Subject: "one"}, {Number: 3, Subject: "three"}, {Number: 2, Subject: "two"}},
		weekly: map[int][]*domain.HotItem{
			1: {hotItem("w1", domain.HotKindWeekly)},
			2: {hotItem("w2", domain.HotKindWeekly)},
			3: {hotItem("w3", domain.HotKindWeekly)},
		},
	}
	s := NewHotService(repo, domain.HotKindWeekly, false, 0, nil, testDeps(domain.DefaultSettings(), nil))

	items, err := s.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"separator-hot-weekly-3", "hot-w3"}, uniqIDs(items))
	assert.Equal(t, "第3期 three", items[0].(*domain.Separator).Content)

	rest := drain(t, s)
	assert.Equal(t, []string{"separator-hot-weekly-2", "hot-w2", "separator-hot-weekly-1", "hot-w1"}, uniqIDs(rest))
}

func TestHotWeeklyShuffleKeepsNewestIssues(t *testing.T) {
	repo := &fakeHot{}
	for n := 1; n <= 10; n++ {
		repo.episodes = append(repo.episodes, domain.WeeklyEpisode{Number: n})
	}
	s := NewHotService(repo, domain.HotKindWeekly, true, 0, nil, testDeps(domain.DefaultSettings(), nil))

	_, err := s.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, s.episodes[0].Number)
	assert.Equal(t, 9, s.episodes[1].Number)
	assert.Len(t, s.episodes, 10)

	again := NewHotService(repo, domain.HotKindWeekly, true, 0, s.ShuffleSnapshot(), testDeps(domain.DefaultSettings(), nil))
	_, err = again.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.episodes, again.episodes)
}

func TestHotRankingSingleShot(t *testing.T) {
	repo := &fakeHot{}
	for _, id := range []string{"r1", "r2", "r3"} {
		repo.ranking = append(repo.ranking, hotItem(id, domain.HotKindRanking))
	}
	settings := domain.DefaultSettings()
	settings.PageSize = 2
	s := NewHotService(repo, domain.HotKindRanking, false, 0, nil, testDeps(settings, nil))

	first, err := s.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.True(t, s.HasMore())

	second, err := s.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hot-r3"}, uniqIDs(second))
	assert.False(t, s.HasMore())
}
