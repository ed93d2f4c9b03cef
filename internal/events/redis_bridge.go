package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// StreamPublisher appends an encoded event to the external event stream.
type StreamPublisher interface {
	PublishEvent(ctx context.Context, kind string, payload []byte) error
}

// RedisBridge forwards every bus event to a Redis stream for the realtime transport.
type RedisBridge struct {
	publisher StreamPublisher
}

func NewRedisBridge(publisher StreamPublisher) *RedisBridge {
	return &RedisBridge{publisher: publisher}
}

// Attach subscribes the bridge to all events on bus.
func (r *RedisBridge) Attach(bus *Bus) (detach func()) {
	return bus.SubscribeAll(r.Handle)
}

func (r *RedisBridge) Handle(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", ev.Kind(), err)
	}
	if err := r.publisher.PublishEvent(ctx, string(ev.Kind()), payload); err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Kind(), err)
	}
	return nil
}
