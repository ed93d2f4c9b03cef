package retention_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/store"
	"basegraph.app/courier/internal/store/storetest"
)

func ptr[T any](v T) *T { return &v }

// memTx adapts storetest.Memory to retention.TxRunner.
type memTx struct {
	mem *storetest.Memory

	// failThread makes ListExpiredIDs fail for one thread.
	failThread int64
	// panicThread makes ListExpiredIDs panic for one thread.
	panicThread int64

	// gate, when set, blocks the first transaction until closed.
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (m *memTx) WithTx(ctx context.Context, fn func(stores retention.StoreProvider) error) error {
	if m.gate != nil {
		m.once.Do(func() {
			close(m.entered)
			<-m.gate
		})
	}
	return m.mem.WithTx(ctx, func(p *storetest.Provider) error {
		if m.failThread != 0 || m.panicThread != 0 {
			return fn(&faultyProvider{Provider: p, failThread: m.failThread, panicThread: m.panicThread})
		}
		return fn(p)
	})
}

type faultyProvider struct {
	*storetest.Provider
	failThread  int64
	panicThread int64
}

func (f *faultyProvider) Messages() store.MessageStore {
	return &faultyMessages{MessageStore: f.Provider.Messages(), failThread: f.failThread, panicThread: f.panicThread}
}

type faultyMessages struct {
	store.MessageStore
	failThread  int64
	panicThread int64
}

func (f *faultyMessages) ListExpiredIDs(ctx context.Context, threadID int64, cutoff time.Time, limit int) ([]int64, error) {
	if threadID == f.failThread {
		return nil, errors.New("connection reset")
	}
	if threadID == f.panicThread {
		panic("corrupt row")
	}
	return f.MessageStore.ListExpiredIDs(ctx, threadID, cutoff, limit)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) Kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind()
	}
	return kinds
}

func (r *recordingPublisher) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func sequence(start int64) func() int64 {
	var n atomic.Int64
	n.Store(start)
	return func() int64 { return n.Add(1) }
}
