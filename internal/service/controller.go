package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/mmcdole/bilirec/internal/feed"
	"github.com/mmcdole/bilirec/internal/filter"
)

const (
	// DefaultMinFill is the number of new videos a refresh waits for
	DefaultMinFill = 10

	// DefaultMaxAttempts bounds LoadMore calls per refresh or fetch
	DefaultMaxAttempts = 10
)

// RefreshOptions selects the tab to load and how its service is reused
type RefreshOptions struct {
	Tab domain.Tab

	// Reuse keeps the tab's service and replays its buffered items
	Reuse bool

	// KeepOrder replays the previous shuffle order in the new service
	KeepOrder bool
}

// Controller drives the active tab's service for a front-end. Refresh
// starts a new cycle and cancels the previous one; FetchMore appends to the
// current cycle and discards its result when a newer refresh started.
type Controller struct {
	registry *Registry
	settings feed.SettingsSource
	notifier domain.Notifier
	logger   *slog.Logger
	now      func() time.Time

	MinFill     int
	MaxAttempts int

	// loadMu serializes service calls; taken before mu
	loadMu sync.Mutex

	mu          sync.Mutex
	tab         domain.Tab
	svc         feed.Service
	items       []domain.Item
	seen        map[string]struct{}
	usage       domain.UsageInfo
	hasMore     bool
	refreshedAt int64
	inFlight    int64
	loading     int
	cycleCtx    context.Context
	cancel      context.CancelFunc
}

// NewController creates a controller over registry
func NewController(registry *Registry, settings feed.SettingsSource, notifier domain.Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = domain.NoOpNotifier{}
	}
	if settings == nil {
		settings = feed.StaticSettings(domain.DefaultSettings())
	}
	return &Controller{
		registry:    registry,
		settings:    settings,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
		MinFill:     DefaultMinFill,
		MaxAttempts: DefaultMaxAttempts,
		seen:        make(map[string]struct{}),
		cycleCtx:    context.Background(),
	}
}

// Refresh loads opts.Tab from scratch. It returns ErrRefreshStale when a
// newer refresh started meanwhile; on failure the previous items stay.
func (c *Controller) Refresh(ctx context.Context, opts RefreshOptions) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	token := max(c.refreshedAt+1, c.now().UnixNano())
	c.refreshedAt = token
	// The cycle outlives ctx: fetches of this cycle run after Refresh returns
	cycleCtx, cancel := context.WithCancel(context.Background())
	c.cycleCtx, c.cancel = cycleCtx, cancel
	c.loading++
	c.mu.Unlock()
	defer c.doneLoading()

	ctx, cancelLoad := context.WithCancel(ctx)
	defer cancelLoad()
	stop := context.AfterFunc(cycleCtx, cancelLoad)
	defer stop()

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.stale(token) {
		return domain.ErrRefreshStale
	}

	settings := c.settings.Snapshot()
	svc, created, err := c.registry.Ensure(opts.Tab, settings, EnsureOptions{Reuse: opts.Reuse, KeepOrder: opts.KeepOrder})
	if err != nil {
		return err
	}
	if r, ok := svc.(feed.Restorer); ok && !created && r.HasCache() {
		r.Restore()
	}

	seen := make(map[string]struct{})
	items, err := c.fill(ctx, svc, seen, max(c.MinFill, 1))
	usage := svc.UsageInfo()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshedAt != token {
		restore(svc)
		c.logger.Debug("refresh discarded", "tab", opts.Tab)
		return domain.ErrRefreshStale
	}
	if err != nil {
		restore(svc)
		c.report(opts.Tab, err)
		return err
	}

	c.tab, c.svc, c.items, c.seen = opts.Tab, svc, items, seen
	c.usage, c.hasMore = usage, svc.HasMore()
	c.logger.Info("refreshed", "tab", opts.Tab, "items", len(items), "hasMore", svc.HasMore())
	return nil
}

// FetchMore appends the next batch of the active tab. A call overlapping
// another FetchMore of the same cycle returns immediately.
func (c *Controller) FetchMore(ctx context.Context) error {
	c.mu.Lock()
	if c.svc == nil {
		c.mu.Unlock()
		return domain.ErrNoActiveTab
	}
	token := c.refreshedAt
	if c.inFlight == token {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = token
	svc, seen, tab, cycleCtx := c.svc, c.seen, c.tab, c.cycleCtx
	c.loading++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inFlight == token {
			c.inFlight = 0
		}
		c.mu.Unlock()
		c.doneLoading()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(cycleCtx, cancel)
	defer stop()

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.stale(token) {
		return domain.ErrRefreshStale
	}
	if !svc.HasMore() {
		return nil
	}

	items, err := c.fill(ctx, svc, seen, 1)
	usage, hasMore := svc.UsageInfo(), svc.HasMore()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshedAt != token {
		c.logger.Debug("fetch discarded", "tab", tab)
		return domain.ErrRefreshStale
	}

	c.items = append(c.items, items...)
	c.usage, c.hasMore = usage, hasMore
	if err != nil {
		if !domain.IsCanceled(err) {
			c.report(tab, err)
		}
		return err
	}
	return nil
}

// fill calls LoadMore until want new videos arrived, the service ran out or
// the attempts are used up. Items fetched before an error are returned
// with it.
func (c *Controller) fill(ctx context.Context, svc feed.Service, seen map[string]struct{}, want int) ([]domain.Item, error) {
	f := filter.New(c.settings.Snapshot().Filter)
	attempts := max(c.MaxAttempts, 1)

	var out []domain.Item
	for i := 0; i < attempts && svc.HasMore(); i++ {
		batch, err := svc.LoadMore(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, filter.Dedup(seen, f.Apply(batch))...)
		if domain.CountVideos(out) >= want {
			break
		}
	}
	return out, nil
}

// report surfaces a failure to the user; cancellation stays silent
func (c *Controller) report(tab domain.Tab, err error) {
	switch {
	case domain.IsCanceled(err), errors.Is(err, domain.ErrRefreshStale):
		return
	case errors.Is(err, domain.ErrAuthRequired):
		c.logger.Warn("login required", "tab", tab)
		c.notifier.Toast(tab.Label() + ": 请先登录 (login required)")
	default:
		c.logger.Error("load failed", "tab", tab, "error", err)
		c.notifier.Toast(tab.Label() + ": 加载失败 " + err.Error())
	}
}

func (c *Controller) stale(token int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshedAt != token
}

func (c *Controller) doneLoading() {
	c.mu.Lock()
	c.loading--
	c.mu.Unlock()
}

func restore(svc feed.Service) {
	if r, ok := svc.(feed.Restorer); ok && r.HasCache() {
		r.Restore()
	}
}

// Items returns a copy of the current item list
func (c *Controller) Items() []domain.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Tab returns the tab of the current items
func (c *Controller) Tab() domain.Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

// RefreshedAt returns the token of the latest refresh
func (c *Controller) RefreshedAt() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshedAt
}

// Loading reports whether a refresh or fetch is running
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// HasMore reports whether the active service could yield more as of the
// last load
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// UsageInfo returns the active service's descriptor as of the last load
func (c *Controller) UsageInfo() domain.UsageInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}
