// Package feed implements the per-source feed services. Each service wraps
// one paginated upstream list, owns its cursor and normalizes the upstream
// shapes into domain items.
//
// Services are not safe for concurrent use; the controller serializes calls.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

// Service is the uniform contract every tab's source implements.
type Service interface {
	Source() domain.Source

	// HasMore reports whether buffered items remain or upstream may yield more
	HasMore() bool

	// LoadMore returns the next batch, nil when exhausted. The cursor only
	// advances after a successful response so a failed call can be retried.
	LoadMore(ctx context.Context) ([]domain.Item, error)

	UsageInfo() domain.UsageInfo
}

// Restorer is implemented by services that buffer items in a Queue.
type Restorer interface {
	HasCache() bool
	Restore()
}

// Shuffler is implemented by services whose shuffle order can be replayed
// by a recreated service.
type Shuffler interface {
	ShuffleSnapshot() map[string]int
}

// SettingsSource hands out settings snapshots.
type SettingsSource interface {
	Snapshot() domain.Settings
}

type staticSettings domain.Settings

func (s staticSettings) Snapshot() domain.Settings { return domain.Settings(s).Clone() }

// StaticSettings returns a SettingsSource that always yields s
func StaticSettings(s domain.Settings) SettingsSource { return staticSettings(s) }

// Deps are the collaborators shared by every service.
type Deps struct {
	Settings SettingsSource
	Notifier domain.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
	Rand     *rand.Rand

	// PageSize sizes the queues; zero takes it from Settings once
	PageSize int
}

// WithDefaults fills unset collaborators
func (d Deps) WithDefaults() Deps {
	if d.Settings == nil {
		d.Settings = StaticSettings(domain.DefaultSettings())
	}
	if d.PageSize <= 0 {
		d.PageSize = d.Settings.Snapshot().EffectivePageSize()
	}
	if d.Notifier == nil {
		d.Notifier = domain.NoOpNotifier{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		d.Rand = rand.New(rand.NewPCG(seed, seed>>17))
	}
	return d
}

// settle handles a failed upstream call. An error code in the envelope is
// shown as a toast and ends the source without an error; login, transport
// and cancellation errors are returned to the caller.
func (d Deps) settle(src domain.Source, err error, hasMore *bool) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && !errors.Is(err, domain.ErrAuthRequired) {
		d.Logger.Warn("upstream rejected request", "source", src, "code", apiErr.Code, "message", apiErr.Message)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		d.Notifier.Toast(string(src) + ": " + msg)
		*hasMore = false
		return nil
	}
	if !domain.IsCanceled(err) {
		d.Logger.Error("load failed", "source", src, "error", err)
	}
	return err
}

// asItems widens a typed slice to the item union
func asItems[T domain.Item](items []T) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func bvidOf[T domain.VideoItem](item T) string { return item.VideoInfo().Bvid }

// itemKey keys videos by bvid and everything else by uniqId
func itemKey(item domain.Item) string {
	if v, ok := item.(domain.VideoItem); ok && v.VideoInfo().Bvid != "" {
		return v.VideoInfo().Bvid
	}
	return item.UniqID()
}
