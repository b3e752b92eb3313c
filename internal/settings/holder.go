// Package settings owns the in-memory settings record. Mutation goes through
// Update only; subscribers (persistence, UI) are notified after each change.
package settings

import (
	"sync"

	"github.com/mmcdole/bilirec/internal/domain"
)

// Holder guards the current settings record.
type Holder struct {
	mu      sync.RWMutex
	current domain.Settings

	subMu  sync.Mutex
	subs   map[int]func(domain.Settings)
	nextID int
}

// NewHolder creates a holder seeded with initial.
func NewHolder(initial domain.Settings) *Holder {
	return &Holder{
		current: initial.Clone(),
		subs:    make(map[int]func(domain.Settings)),
	}
}

// Snapshot returns a copy of the current settings. Services take one at the
// start of each call so a change never affects a call already in flight.
func (h *Holder) Snapshot() domain.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Update applies fn to a copy of the settings, stores it and notifies
// subscribers with the new value.
func (h *Holder) Update(fn func(*domain.Settings)) domain.Settings {
	h.mu.Lock()
	next := h.current.Clone()
	fn(&next)
	h.current = next
	h.mu.Unlock()

	h.subMu.Lock()
	subs := make([]func(domain.Settings), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.subMu.Unlock()

	for _, sub := range subs {
		sub(next.Clone())
	}
	return next.Clone()
}

// Subscribe registers fn for change notifications and returns a function
// removing it.
func (h *Holder) Subscribe(fn func(domain.Settings)) func() {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.subMu.Lock()
		delete(h.subs, id)
		h.subMu.Unlock()
	}
}
