package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/adapter/source/bilibili"
	"github.com/mmcdole/bilirec/internal/domain"
)

// FeedSource combines all repository interfaces the feed services read from.
type FeedSource interface {
	domain.RecommendRepository  // App and PC recommendation feeds
	domain.DynamicRepository    // Followed-users dynamics and follow groups
	domain.WatchlaterRepository // Watch-later queue
	domain.FavRepository        // Favorites folders and resources
	domain.LiveRepository       // Followed live rooms
	domain.HotRepository        // Popular, weekly and ranking lists
	domain.AccountRepository    // Logged-in account
}

// NewClient creates a FeedSource from explicit client settings
func NewClient(cfg bilibili.Config, logger *slog.Logger) (FeedSource, error) {
	if cfg.WebURL == "" {
		return nil, fmt.Errorf("web API URL is required")
	}
	return bilibili.NewClient(cfg, logger), nil
}

// NewClientFromConfig creates a FeedSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (FeedSource, error) {
	return NewClient(bilibili.Config{
		WebURL:    cfg.API.WebURL,
		AppURL:    cfg.API.AppURL,
		LiveURL:   cfg.API.LiveURL,
		UserAgent: cfg.API.UserAgent,
		SessData:  cfg.Auth.SessData,
		BiliJct:   cfg.Auth.BiliJct,
		AccessKey: cfg.Auth.AccessKey,
		Timeout:   time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}, logger)
}
