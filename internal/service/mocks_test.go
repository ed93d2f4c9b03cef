package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/notify"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store/storetest"
)

func ptr[T any](v T) *T { return &v }

// memTx adapts storetest.Memory to service.TxRunner.
type memTx struct {
	mem *storetest.Memory
}

func (m memTx) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	return m.mem.WithTx(ctx, func(p *storetest.Provider) error {
		return fn(p)
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	panics bool
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.Event) {
	if r.panics {
		panic("subscriber exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type mockNotifier struct {
	mu            sync.Mutex
	notifications []notify.Notification
	options       []notify.Options
	err           error
}

func (m *mockNotifier) QueueNotification(_ context.Context, n notify.Notification, opts notify.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.notifications = append(m.notifications, n)
	m.options = append(m.options, opts)
	return nil
}

func (m *mockNotifier) Recipients() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.notifications))
	for i, n := range m.notifications {
		out[i] = n.UserID
	}
	return out
}

func (m *mockNotifier) Options() []notify.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Options(nil), m.options...)
}

type mockScheduler struct {
	mu       sync.Mutex
	requests []autoreply.Request
}

func (m *mockScheduler) Schedule(_ context.Context, req autoreply.Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return true
}

func (m *mockScheduler) Requests() []autoreply.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]autoreply.Request(nil), m.requests...)
}

// failingCache fails every call.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("redis down") }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}
func (failingCache) Delete(context.Context, ...string) error { return errors.New("redis down") }
func (failingCache) FlushPrefix(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

func sequence(start int64) func() int64 {
	var n atomic.Int64
	n.Store(start)
	return func() int64 { return n.Add(1) }
}

// harness wires the services over the in-memory store with synchronous fan-out.
type harness struct {
	mem       *storetest.Memory
	cache     cache.Cache
	clock     *clock.Fake
	publisher *recordingPublisher
	notifier  *mockNotifier
	scheduler *mockScheduler
	services  *service.Services
}

type harnessOption func(*harness)

func withCache(c cache.Cache) harnessOption {
	return func(h *harness) { h.cache = c }
}

func newHarness(now time.Time, opts ...harnessOption) *harness {
	h := &harness{
		mem:       storetest.New(),
		cache:     cache.NewMemoryCache(),
		clock:     clock.NewFake(now),
		publisher: &recordingPublisher{},
		notifier:  &mockNotifier{},
		scheduler: &mockScheduler{},
	}
	for _, opt := range opts {
		opt(h)
	}

	metrics := service.NewMetrics(nil)
	fanout := service.NewFanout(h.cache, h.publisher, h.notifier, h.scheduler, metrics).
		WithSpawn(func(f func()) { f() })

	h.services = service.NewServices(service.Deps{
		Stores:        h.mem.Stores(),
		TxRunner:      memTx{mem: h.mem},
		Cache:         h.cache,
		CacheTTL:      time.Minute,
		Fanout:        fanout,
		SupportRoster: []int64{900},
		Clock:         h.clock,
		NewID:         sequence(1000),
		Metrics:       metrics,
	})
	return h
}

// seedThread stores an active thread with the given owner and participants.
func (h *harness) seedThread(id int64, channel model.ChannelType, owner int64, others ...int64) {
	h.mem.SeedThread(model.Thread{
		ID:              id,
		ChannelType:     channel,
		State:           model.ThreadStateActive,
		CreatedBy:       owner,
		RetentionPolicy: "standard",
		RetentionDays:   365,
		CreatedAt:       h.clock.Now().Add(-time.Hour),
		UpdatedAt:       h.clock.Now().Add(-time.Hour),
	})
	h.mem.SeedParticipant(model.Participant{
		ThreadID: id, UserID: owner, Role: model.ParticipantRoleOwner,
		NotificationsEnabled: true, JoinedAt: h.clock.Now().Add(-time.Hour),
	})
	for _, userID := range others {
		h.mem.SeedParticipant(model.Participant{
			ThreadID: id, UserID: userID, Role: model.ParticipantRoleParticipant,
			NotificationsEnabled: true, JoinedAt: h.clock.Now().Add(-time.Hour),
		})
	}
}
