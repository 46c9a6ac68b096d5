// Package bus provides the in-process event bus: a synchronous fan-out of
// domain events to any number of subscribers. A Bus is an explicit instance
// passed to components at construction, so tests can run an isolated bus.
package bus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/starwatch-app/starwatch/internal/model"
)

// Handler receives every published event. Handlers run synchronously on the
// publisher's goroutine, in subscription order, before Publish returns.
type Handler func(model.Event)

// Bus fans published events out to all subscribers.
type Bus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers []Handler

	published atomic.Int64
}

// New creates an empty bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers a handler for all subsequent publishes. Subscribers
// live for the life of the bus; there is no unsubscribe.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers ev to every subscriber and returns once all have run.
// Delivery is at-least-once, in publish order per subscriber; no ordering is
// guaranteed between subscribers.
func (b *Bus) Publish(ev model.Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	b.published.Add(1)

	for _, h := range handlers {
		h(ev)
	}
}

// Published returns the number of events published so far.
func (b *Bus) Published() int64 {
	return b.published.Load()
}
