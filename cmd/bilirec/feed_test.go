package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/service"
)

func init() {
	color.NoColor = true
}

// pagedController serves pages of n videos, with a separator at the top
type pagedController struct {
	pages   int
	perPage int
	failAt  int // FetchMore call that fails, 0 = never
	items   []domain.Item
	fetches int
	opts    service.RefreshOptions
}

func (c *pagedController) page(p int) []domain.Item {
	items := make([]domain.Item, c.perPage)
	for i := range items {
		items[i] = &domain.AppItem{ID: fmt.Sprintf("app-%d-%d", p, i), Video: domain.Video{Title: "t"}}
	}
	return items
}

func (c *pagedController) Refresh(_ context.Context, opts service.RefreshOptions) error {
	c.opts = opts
	c.items = append([]domain.Item{domain.NewSeparator("top", "top")}, c.page(0)...)
	return nil
}

func (c *pagedController) FetchMore(context.Context) error {
	c.fetches++
	if c.fetches == c.failAt {
		return errors.New("boom")
	}
	c.items = append(c.items, c.page(c.fetches)...)
	return nil
}

func (c *pagedController) Items() []domain.Item { return c.items }
func (c *pagedController) HasMore() bool        { return c.fetches+1 < c.pages }

func TestCollect_FetchesUntilCount(t *testing.T) {
	ctrl := &pagedController{pages: 10, perPage: 4}

	items, err := collect(context.Background(), ctrl, domain.TabAppRecommend, 10)
	require.NoError(t, err)

	assert.Equal(t, service.RefreshOptions{Tab: domain.TabAppRecommend, Reuse: true}, ctrl.opts)
	assert.Equal(t, 2, ctrl.fetches)
	assert.Equal(t, 10, domain.CountVideos(items))
	assert.True(t, domain.IsSeparator(items[0]))
}

func TestCollect_StopsWhenSourceRunsDry(t *testing.T) {
	ctrl := &pagedController{pages: 2, perPage: 3}

	items, err := collect(context.Background(), ctrl, domain.TabAppRecommend, 100)
	require.NoError(t, err)
	assert.Equal(t, 6, domain.CountVideos(items))
}

func TestCollect_KeepsItemsOnError(t *testing.T) {
	ctrl := &pagedController{pages: 10, perPage: 3, failAt: 2}

	items, err := collect(context.Background(), ctrl, domain.TabAppRecommend, 100)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 6, domain.CountVideos(items))
}

func TestTruncateVideos(t *testing.T) {
	items := []domain.Item{
		domain.NewSeparator("a", "a"),
		&domain.AppItem{ID: "1"},
		domain.NewSeparator("b", "b"),
		&domain.AppItem{ID: "2"},
		&domain.AppItem{ID: "3"},
	}
	got := truncateVideos(items, 2)
	assert.Len(t, got, 4)
	assert.Equal(t, "2", got[3].UniqID())
	assert.Len(t, truncateVideos(items, 10), 5)
}

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	printItems(&buf, []domain.Item{
		domain.NewSeparator("watchlater-recent", "近期"),
		&domain.WatchlaterItem{ID: "w", Video: domain.Video{
			Bvid: "BV1", Title: "Video", AuthorName: "up", Duration: 75 * time.Second, Play: 12_000,
		}},
		&domain.LiveItem{ID: "l", RoomID: 3, Title: "Stream", Uname: "host", Living: true},
	})

	assert.Equal(t, "── 近期 ──\n"+
		"Video - up  1:15  1.2万 plays  https://www.bilibili.com/video/BV1\n"+
		"LIVE Stream host https://live.bilibili.com/3\n", buf.String())
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(none)", mask(""))
	assert.Equal(t, "****", mask("abcd"))
	assert.Equal(t, "abc****hij", mask("abcdefghij"))
}

func TestTabsCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tabs"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "app-recommend")
	assert.Contains(t, out.String(), "watchlater       Watch Later (login)")
}

func TestFeedCommand_RejectsFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"feed", "--format", "xml"})

	assert.ErrorContains(t, cmd.Execute(), `invalid format "xml"`)
}
