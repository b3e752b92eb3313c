package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/domain"
)

type launch struct {
	url   string
	start time.Duration
}

type fakeLauncher struct {
	calls []launch
	err   error
}

func (f *fakeLauncher) Launch(url string, start time.Duration) error {
	f.calls = append(f.calls, launch{url, start})
	return f.err
}

func TestPlaybackService_Open(t *testing.T) {
	l := &fakeLauncher{}
	svc := NewPlaybackService(l, adapter.NullLogger())

	require.NoError(t, svc.Open(&domain.WatchlaterItem{
		ID:       "watchlater-BV1",
		Video:    domain.Video{Bvid: "BV1"},
		Progress: 90 * time.Second,
	}))
	require.NoError(t, svc.Open(&domain.LiveItem{ID: "live-5", RoomID: 5}))
	require.NoError(t, svc.Open(&domain.HotItem{ID: "hot-7", Video: domain.Video{Aid: 7}}))

	assert.Equal(t, []launch{
		{"https://www.bilibili.com/video/BV1", 90 * time.Second},
		{"https://live.bilibili.com/5", 0},
		{"https://www.bilibili.com/video/av7", 0},
	}, l.calls)
}

func TestPlaybackService_OpenSeparatorFails(t *testing.T) {
	l := &fakeLauncher{}
	svc := NewPlaybackService(l, adapter.NullLogger())

	assert.Error(t, svc.Open(domain.NewSeparator("x", "x")))
	assert.Empty(t, l.calls)
}

func TestPlaybackService_LauncherError(t *testing.T) {
	boom := errors.New("no player")
	svc := NewPlaybackService(&fakeLauncher{err: boom}, adapter.NullLogger())

	assert.ErrorIs(t, svc.OpenVideo("BV1xx"), boom)
}

func TestVideoURL(t *testing.T) {
	assert.Equal(t, "https://www.bilibili.com/video/BV1xx", VideoURL("BV1xx"))
	assert.Equal(t, "https://www.bilibili.com/video/BV1xx", VideoURL("bv1xx"))
	assert.Equal(t, "https://www.bilibili.com/video/av170001", VideoURL("av170001"))
	assert.Equal(t, "https://b23.tv/abc", VideoURL(" https://b23.tv/abc "))
	assert.Empty(t, VideoURL("avx"))
	assert.Empty(t, VideoURL("hello"))
}
