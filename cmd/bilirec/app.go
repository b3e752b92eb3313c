package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/adapter/source"
	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/feed"
	"github.com/mmcdole/bilirec/internal/service"
	"github.com/mmcdole/bilirec/internal/settings"
	"github.com/mmcdole/bilirec/internal/store"
)

// app holds the wired services shared by every command
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	store    *store.KVStore
	client   source.FeedSource
	settings *settings.Holder
	ctrl     *service.Controller
	playback *service.PlaybackService
	session  *service.SessionService

	unsubscribe func()
}

// newApp loads the config and wires the feed stack. notifier receives the
// service toasts.
func newApp(notifier domain.Notifier) (*app, error) {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting bilirec", "version", version)

	kv, err := store.NewKVStore(cfg.Store.Path)
	if err != nil {
		logger.Warn("persistent store unavailable, using memory", "error", err)
		kv, _ = store.NewKVStore("")
	}

	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	holder := settings.NewHolder(cfg.Settings)
	unsubscribe := holder.Subscribe(func(s domain.Settings) {
		if err := adapter.SaveSettings(s); err != nil {
			logger.Error("failed to save settings", "error", err)
		}
	})

	a := &app{
		cfg:         cfg,
		logger:      logger,
		store:       kv,
		client:      client,
		settings:    holder,
		playback:    service.NewPlaybackService(adapter.NewLauncher(cfg.Player, logger), logger),
		session:     service.NewSessionService(kv),
		unsubscribe: unsubscribe,
	}

	registry := service.NewRegistry(&service.Factory{
		Repos: client,
		Store: kv,
		Mid:   a.resolveMid(),
		Deps: feed.Deps{
			Settings: holder,
			Notifier: notifier,
			Logger:   logger,
		},
	})
	a.ctrl = service.NewController(registry, holder, notifier, logger)
	return a, nil
}

// resolveMid returns the configured account id, asking the nav endpoint
// when it is unset. The result is saved so later runs skip the request.
func (a *app) resolveMid() int64 {
	if a.cfg.Auth.Mid != 0 || !a.cfg.IsLoggedIn() {
		return a.cfg.Auth.Mid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, err := a.client.GetNav(ctx)
	if err != nil || !account.LoggedIn {
		a.logger.Warn("could not resolve account", "error", err)
		return 0
	}

	a.cfg.Auth.Mid = account.Mid
	if err := adapter.SaveConfig(a.cfg); err != nil {
		a.logger.Warn("failed to save account id", "error", err)
	}
	return account.Mid
}

func (a *app) Close() {
	a.unsubscribe()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
	a.logger.Info("shutting down")
}
