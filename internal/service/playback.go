package service

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

// launcher abstracts opening a URL externally (consumer-defined interface)
type launcher interface {
	Launch(url string, start time.Duration) error
}

// PlaybackService opens feed items outside the terminal
type PlaybackService struct {
	launcher launcher
	logger   *slog.Logger
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(launcher launcher, logger *slog.Logger) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{launcher: launcher, logger: logger}
}

// Open launches the item's page. Watch-later entries resume where they
// were left.
func (s *PlaybackService) Open(item domain.Item) error {
	url, start := ItemURL(item), time.Duration(0)
	if wl, ok := item.(*domain.WatchlaterItem); ok {
		start = wl.Progress
	}
	if url == "" {
		return fmt.Errorf("nothing to open for %s", item.UniqID())
	}

	s.logger.Info("opening item", "id", item.UniqID(), "url", url, "start", start)
	return s.launcher.Launch(url, start)
}

// OpenVideo launches a video given its bvid, av number or page URL
func (s *PlaybackService) OpenVideo(ref string) error {
	url := VideoURL(ref)
	if url == "" {
		return fmt.Errorf("not a video reference: %q", ref)
	}
	s.logger.Info("opening video", "ref", ref, "url", url)
	return s.launcher.Launch(url, 0)
}

// VideoURL normalizes a bvid ("BV1xx"), av number ("av170001") or URL to
// the video page. Empty when ref is none of those.
func VideoURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "http://"):
		return ref
	case len(ref) > 2 && strings.EqualFold(ref[:2], "bv"):
		return (&domain.Video{Bvid: "BV" + ref[2:]}).URL()
	case len(ref) > 2 && strings.EqualFold(ref[:2], "av"):
		aid, err := strconv.ParseInt(ref[2:], 10, 64)
		if err != nil || aid <= 0 {
			return ""
		}
		return (&domain.Video{Aid: aid}).URL()
	default:
		return ""
	}
}

// ItemURL returns the page of a video or live room, empty for separators
func ItemURL(item domain.Item) string {
	switch v := item.(type) {
	case *domain.LiveItem:
		return v.URL()
	case domain.VideoItem:
		return v.VideoInfo().URL()
	default:
		return ""
	}
}
