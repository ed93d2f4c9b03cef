package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler consumes one event. Returned errors are logged by the Bus.
type Handler func(ctx context.Context, ev Event) error

// Publisher is the narrow view producers depend on.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Bus is an in-process publish/subscribe point. Delivery is synchronous, best effort
// and not persisted: subscribers must tolerate events missed across restarts.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Kind]map[int]Handler
	wildcard map[int]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Kind]map[int]Handler),
		wildcard: make(map[int]Handler),
	}
}

// Subscribe registers h for kind and returns a function that removes it.
func (b *Bus) Subscribe(kind Kind, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]Handler)
	}
	b.handlers[kind][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[kind], id)
	}
}

// SubscribeAll registers h for every kind.
func (b *Bus) SubscribeAll(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.wildcard[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.wildcard, id)
	}
}

// Publish delivers ev to every subscriber. A failing or panicking handler is logged
// and does not affect the others or the publisher.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.handlers[ev.Kind()])+len(b.wildcard))
	for _, h := range b.handlers[ev.Kind()] {
		targets = append(targets, h)
	}
	for _, h := range b.wildcard {
		targets = append(targets, h)
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(ctx, h, ev)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "event handler panicked",
				"event", ev.Kind(),
				"panic", fmt.Sprint(r))
		}
	}()
	if err := h(ctx, ev); err != nil {
		slog.WarnContext(ctx, "event handler failed",
			"event", ev.Kind(),
			"error", err)
	}
}
