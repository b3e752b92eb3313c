package bilibili

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		WebURL:   srv.URL,
		AppURL:   srv.URL,
		LiveURL:  srv.URL,
		SessData: "sess",
		BiliJct:  "jct",
	}, adapter.NullLogger())
}

func TestDynamicFeedMapsVideosAndCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/x/polymer/web-dynamic/v1/feed/all", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "", r.URL.Query().Get("offset"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Contains(t, r.Header.Get("Cookie"), "SESSDATA=sess")
		w.Write([]byte(`{"code":0,"data":{"has_more":true,"offset":"abc","items":[
			{"id_str":"1","type":"DYNAMIC_TYPE_AV","modules":{"module_author":{"mid":7,"name":"up","pub_ts":1700000000},
			 "module_dynamic":{"major":{"type":"MAJOR_TYPE_ARCHIVE","archive":{"aid":"11","bvid":"BV1","title":"t1","duration_text":"01:02","stat":{"play":"1.5万","danmaku":"30"}}}}}},
			{"id_str":"2","type":"DYNAMIC_TYPE_WORD","modules":{"module_author":{"mid":7},"module_dynamic":{"major":null}}}
		]}}`))
	})

	page, err := c.GetDynamicFeed(context.Background(), domain.DynamicQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "abc", page.Offset)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, "dynamic-1", item.UniqID())
	assert.Equal(t, int64(11), item.Aid)
	assert.Equal(t, int64(15000), item.Play)
	assert.Equal(t, int64(30), item.Danmaku)
	assert.Equal(t, 62*time.Second, item.Duration)
	assert.Equal(t, int64(1700000000), item.PubDate.Unix())
}

func TestNotLoggedInMapsToAuthRequired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-101,"message":"账号未登录","data":null}`))
	})

	_, err := c.GetWatchlater(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "/x/v2/history/toview", apiErr.Path)
}

func TestOtherAPIErrorIsNotAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-352,"message":"风控校验失败"}`))
	})

	_, err := c.GetPopular(context.Background(), 1, 20)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAuthRequired)
	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, -352, apiErr.Code)
}

func TestHTTPStatusIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetRanking(context.Background(), 0)
	require.Error(t, err)
	var apiErr *domain.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCanceledRequestKeepsContextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"data":{"list":[]}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetPopular(ctx, 1, 20)
	require.Error(t, err)
	assert.True(t, domain.IsCanceled(err))
	assert.NotErrorIs(t, err, domain.ErrServerOffline)
}

func TestUnreachableIsServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{WebURL: url}, adapter.NullLogger())
	_, err := c.GetWeeklySeries(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestAppRecommendCursorAndFallbackID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("pull"))
		w.Write([]byte(`{"code":0,"data":{"items":[
			{"goto":"av","param":"100","idx":5,"title":"a","args":{"up_id":1,"up_name":"u","aid":100},"player_args":{"duration":90}},
			{"goto":"ad_web_s","param":"","idx":6}
		]}}`))
	})

	page, err := c.GetAppRecommend(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.NextIdx)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "app-100", page.Items[0].UniqID())
	assert.Equal(t, 90*time.Second, page.Items[0].Duration)
	assert.Regexp(t, `^app-[0-9a-f-]{36}$`, page.Items[1].UniqID())
}

func TestFavResourcesKeepFolderTitleAndSkipNonVideo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("media_id"))
		assert.Equal(t, "2", r.URL.Query().Get("pn"))
		w.Write([]byte(`{"code":0,"data":{"info":{"id":42,"title":"默认收藏夹"},"has_more":false,"medias":[
			{"id":1,"type":2,"title":"v","bvid":"BVa","attr":0,"fav_time":1700000000,"upper":{"mid":3,"name":"n"},"cnt_info":{"play":10,"collect":2}},
			{"id":2,"type":12,"title":"audio","bvid":""}
		]}}`))
	})

	page, err := c.GetFavResources(context.Background(), 42, 2, 20)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "fav-BVa", page.Items[0].UniqID())
	assert.Equal(t, "默认收藏夹", page.Items[0].FolderTitle)
	assert.Equal(t, int64(42), page.Items[0].FolderID)
}

func TestFavResourcesNullMedias(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"data":{"info":{"id":1},"medias":null,"has_more":false}}`))
	})

	page, err := c.GetFavResources(context.Background(), 1, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestFollowGroupWalksPages(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("pn") == "1" {
			body := `{"code":0,"data":[`
			for i := 0; i < followGroupPage; i++ {
				if i > 0 {
					body += ","
				}
				body += `{"mid":1}`
			}
			w.Write([]byte(body + `]}`))
			return
		}
		w.Write([]byte(`{"code":0,"data":[{"mid":2}]}`))
	})

	mids, err := c.GetFollowGroupMids(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, mids, followGroupPage+1)
	assert.Equal(t, 2, calls)
}

func TestLiveFollowing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xlive/web-ucenter/user/following", r.URL.Path)
		w.Write([]byte(`{"code":0,"data":{"totalPage":3,"list":[
			{"roomid":10,"uid":1,"uname":"a","title":"on","live_status":1},
			{"roomid":11,"uid":2,"uname":"b","title":"off","live_status":0,"record_live_time":1700000000}
		]}}`))
	})

	page, err := c.GetFollowingLive(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPage)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "live-10", page.Items[0].UniqID())
	assert.True(t, page.Items[0].Living)
	assert.False(t, page.Items[1].Living)
}

func TestNavLoggedOut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-101,"message":"账号未登录","data":{"isLogin":false}}`))
	})

	acct, err := c.GetNav(context.Background())
	require.NoError(t, err)
	assert.False(t, acct.LoggedIn)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{"123", 123},
		{"1.2万", 12000},
		{"3亿", 300000000},
		{float64(42), 42},
		{"-", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCount(tt.in), "input %v", tt.in)
	}
}

func TestParseClock(t *testing.T) {
	assert.Equal(t, 62*time.Second, parseClock("01:02"))
	assert.Equal(t, time.Hour+2*time.Second, parseClock("1:00:02"))
	assert.Equal(t, time.Duration(0), parseClock("bad"))
}
