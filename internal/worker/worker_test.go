package worker_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/courier/internal/queue"
	"basegraph.app/courier/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx       context.Context
		consumer  *mockConsumer
		processor *mockProcessor
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		processor = &mockProcessor{}
	})

	run := func(w *worker.Worker) {
		go func() {
			defer GinkgoRecover()
			_ = w.Run(ctx)
		}()
		DeferCleanup(w.Stop)
	}

	It("acks processed messages", func() {
		consumer.batches = [][]queue.Message{{{ID: "1-0", Attempt: 1}, {ID: "2-0", Attempt: 1}}}

		run(worker.New(consumer, processor, worker.Config{MaxAttempts: 3}))

		Eventually(consumer.Acked).Should(Equal([]string{"1-0", "2-0"}))
	})

	It("requeues failures below the attempt limit", func() {
		processor.processFn = func(context.Context, queue.Message) error { return errors.New("llm timeout") }
		consumer.batches = [][]queue.Message{{{ID: "1-0", Attempt: 1}}}

		run(worker.New(consumer, processor, worker.Config{MaxAttempts: 3}))

		Eventually(consumer.Requeued).Should(Equal([]string{"1-0"}))
		Expect(consumer.Acked()).To(BeEmpty())
	})

	It("dead-letters a message on its last attempt", func() {
		processor.processFn = func(context.Context, queue.Message) error { return errors.New("llm timeout") }
		consumer.batches = [][]queue.Message{{{ID: "1-0", Attempt: 3}}}

		run(worker.New(consumer, processor, worker.Config{MaxAttempts: 3}))

		Eventually(consumer.DLQ).Should(Equal([]string{"1-0"}))
	})

	It("recovers processor panics", func() {
		processor.processFn = func(context.Context, queue.Message) error { panic("boom") }
		w := worker.New(consumer, processor, worker.Config{MaxAttempts: 3})

		err := w.ProcessMessage(ctx, queue.Message{ID: "1-0", Attempt: 1})

		Expect(err).To(MatchError(ContainSubstring("panic: boom")))
		Expect(consumer.Acked()).To(BeEmpty())
	})

	It("still reports success when the ack fails", func() {
		consumer.ackErr = errors.New("connection reset")
		w := worker.New(consumer, processor, worker.Config{})

		Expect(w.ProcessMessage(ctx, queue.Message{ID: "1-0", Attempt: 1})).To(Succeed())
	})
})
