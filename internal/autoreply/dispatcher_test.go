package autoreply_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/queue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dispatcher", func() {
	var (
		ctx context.Context
		enq *mockEnqueuer
		clk *clock.Fake
	)

	BeforeEach(func() {
		ctx = context.Background()
		enq = &mockEnqueuer{}
		clk = clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	})

	It("hands scheduled requests to the enqueuer", func() {
		d := autoreply.NewDispatcher(enq, autoreply.Config{QueueSize: 4, Workers: 1}, clk)

		Expect(d.Schedule(ctx, autoreply.Request{ThreadID: 1, MessageID: 10, SenderID: 5, TraceID: "t"})).To(BeTrue())
		d.Close()

		tasks := enq.Tasks()
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].MessageID).To(Equal(int64(10)))
		Expect(tasks[0].TraceID).NotTo(BeNil())
		Expect(*tasks[0].TraceID).To(Equal("t"))
	})

	It("dedupes the same message within the window", func() {
		d := autoreply.NewDispatcher(enq, autoreply.Config{QueueSize: 4, Workers: 1, DedupeWindow: time.Hour}, clk)
		defer d.Close()

		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 10})).To(BeTrue())
		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 10})).To(BeFalse())

		clk.Advance(2 * time.Hour)
		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 10})).To(BeTrue())
	})

	It("drops instead of blocking when the buffer is full", func() {
		release := make(chan struct{})
		enq.enqueueFn = func(context.Context, queue.AutoReplyTask) (bool, error) {
			<-release
			return true, nil
		}
		d := autoreply.NewDispatcher(enq, autoreply.Config{QueueSize: 1, Workers: 1}, clk)

		// First request occupies the worker, second fills the buffer.
		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 1})).To(BeTrue())
		Eventually(d.Pending).Should(Equal(0))
		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 2})).To(BeTrue())

		done := make(chan bool)
		go func() { done <- d.Schedule(ctx, autoreply.Request{MessageID: 3}) }()
		Eventually(done).Should(Receive(BeFalse()))

		close(release)
		d.Close()
		Expect(enq.Tasks()).To(HaveLen(2))
	})

	It("allows a retry after an enqueue failure", func() {
		var calls atomic.Int32
		enq.enqueueFn = func(context.Context, queue.AutoReplyTask) (bool, error) {
			if calls.Add(1) == 1 {
				return false, errors.New("redis down")
			}
			return true, nil
		}
		d := autoreply.NewDispatcher(enq, autoreply.Config{QueueSize: 4, Workers: 1}, clk)

		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 7})).To(BeTrue())
		Eventually(calls.Load).Should(Equal(int32(1)))
		Eventually(func() bool { return d.Schedule(ctx, autoreply.Request{MessageID: 7}) }).Should(BeTrue())

		d.Close()
		Expect(enq.Tasks()).To(HaveLen(1))
	})

	It("refuses requests after Close", func() {
		d := autoreply.NewDispatcher(enq, autoreply.Config{}, clk)
		d.Close()
		d.Close()
		Expect(d.Schedule(ctx, autoreply.Request{MessageID: 1})).To(BeFalse())
	})
})
