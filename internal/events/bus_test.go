package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingPublisher struct {
	kinds    []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) PublishEvent(_ context.Context, kind string, payload []byte) error {
	r.kinds = append(r.kinds, kind)
	r.payloads = append(r.payloads, payload)
	return r.err
}

var _ = Describe("Bus", func() {
	var (
		ctx context.Context
		bus *events.Bus
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewBus()
	})

	It("delivers only to subscribers of the event kind", func() {
		var appended, purged int
		bus.Subscribe(events.KindMessageAppended, func(context.Context, events.Event) error {
			appended++
			return nil
		})
		bus.Subscribe(events.KindMessagesPurged, func(context.Context, events.Event) error {
			purged++
			return nil
		})

		bus.Publish(ctx, events.MessageAppended{ThreadID: 1})

		Expect(appended).To(Equal(1))
		Expect(purged).To(Equal(0))
	})

	It("stops delivering after unsubscribe", func() {
		var calls int
		unsubscribe := bus.Subscribe(events.KindMessageAppended, func(context.Context, events.Event) error {
			calls++
			return nil
		})

		bus.Publish(ctx, events.MessageAppended{})
		unsubscribe()
		bus.Publish(ctx, events.MessageAppended{})

		Expect(calls).To(Equal(1))
	})

	It("isolates failing and panicking handlers", func() {
		var reached bool
		bus.Subscribe(events.KindMessagesPurged, func(context.Context, events.Event) error {
			panic("boom")
		})
		bus.Subscribe(events.KindMessagesPurged, func(context.Context, events.Event) error {
			return errors.New("handler failed")
		})
		bus.SubscribeAll(func(context.Context, events.Event) error {
			reached = true
			return nil
		})

		Expect(func() { bus.Publish(ctx, events.MessagesPurged{ThreadID: 9}) }).NotTo(Panic())
		Expect(reached).To(BeTrue())
	})
})

var _ = Describe("RedisBridge", func() {
	It("forwards every event as JSON", func() {
		bus := events.NewBus()
		pub := &recordingPublisher{}
		events.NewRedisBridge(pub).Attach(bus)

		sender := int64(5)
		bus.Publish(context.Background(), events.MessageAppended{
			ThreadID: 1,
			Message:  model.Message{ID: 2, ThreadID: 1, SenderID: &sender, Body: "hi"},
		})
		bus.Publish(context.Background(), events.MessagesPurged{
			ThreadID:   1,
			DeletedIDs: []int64{3},
			Cutoff:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})

		Expect(pub.kinds).To(Equal([]string{"MESSAGE_APPENDED", "MESSAGES_PURGED"}))

		var decoded map[string]any
		Expect(json.Unmarshal(pub.payloads[1], &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("threadId", BeNumerically("==", 1)))
		Expect(decoded).To(HaveKey("deletedIds"))
	})

	It("reports publisher failures to the bus", func() {
		bridge := events.NewRedisBridge(&recordingPublisher{err: errors.New("stream down")})
		err := bridge.Handle(context.Background(), events.MessagesPurged{})
		Expect(err).To(MatchError(ContainSubstring("stream down")))
	})
})
