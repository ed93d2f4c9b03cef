package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/queue"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store/storetest"
	"basegraph.app/courier/internal/worker"
)

var _ = Describe("AutoReplyProcessor", func() {
	const assistantID = int64(777)

	var (
		ctx       context.Context
		now       time.Time
		mem       *storetest.Memory
		responder *mockResponder
		appender  *mockAppender
		processor *worker.AutoReplyProcessor
		task      queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		mem = storetest.New()
		responder = &mockResponder{}
		appender = &mockAppender{}
		processor = worker.NewAutoReplyProcessor(mem.Stores(), responder, appender, assistantID)

		mem.SeedThread(model.Thread{ID: 1, ChannelType: model.ChannelTypeDirect, CreatedBy: 10, CreatedAt: now})
		mem.SeedParticipant(model.Participant{ThreadID: 1, UserID: 10, Role: model.ParticipantRoleOwner})
		mem.SeedParticipant(model.Participant{ThreadID: 1, UserID: assistantID, Role: model.ParticipantRoleSystem})
		mem.SeedMessage(model.Message{ID: 100, ThreadID: 1, SenderID: ptr(int64(10)), MessageType: model.MessageTypeText, Body: "Do you ship abroad?", CreatedAt: now})

		task = queue.Message{ID: "1-0", TaskType: queue.TaskTypeAutoReply, ThreadID: 1, MessageID: 100, SenderID: 10, Attempt: 1}
	})

	It("posts the reply as the assistant, marked as automatic", func() {
		Expect(processor.Process(ctx, task)).To(Succeed())

		Expect(responder.last.Trigger.ID).To(Equal(int64(100)))
		Expect(responder.last.History).To(HaveLen(1))
		Expect(appender.senders).To(Equal([]int64{assistantID}))
		Expect(appender.inputs[0].Metadata.AutoReply).To(BeTrue())
		Expect(*appender.inputs[0].Metadata.ReplyToID).To(Equal("100"))
	})

	It("skips threads the assistant has not joined", func() {
		mem.SeedThread(model.Thread{ID: 2, ChannelType: model.ChannelTypeDirect, CreatedBy: 10, CreatedAt: now})
		mem.SeedMessage(model.Message{ID: 200, ThreadID: 2, SenderID: ptr(int64(10)), MessageType: model.MessageTypeText, Body: "hi", CreatedAt: now})
		task.ThreadID, task.MessageID = 2, 200

		Expect(processor.Process(ctx, task)).To(Succeed())
		Expect(responder.calls).To(BeZero())
	})

	It("skips purged messages", func() {
		task.MessageID = 404

		Expect(processor.Process(ctx, task)).To(Succeed())
		Expect(responder.calls).To(BeZero())
	})

	It("skips locked threads", func() {
		mem.SeedThread(model.Thread{ID: 1, ChannelType: model.ChannelTypeDirect, State: model.ThreadStateLocked, CreatedBy: 10, CreatedAt: now})

		Expect(processor.Process(ctx, task)).To(Succeed())
		Expect(responder.calls).To(BeZero())
	})

	It("does not answer a message twice", func() {
		mem.SeedMessage(model.Message{
			ID: 101, ThreadID: 1, SenderID: ptr(assistantID), MessageType: model.MessageTypeText, Body: "Yes",
			Metadata:  model.MessageMetadata{AutoReply: true, ReplyToID: ptr("100")},
			CreatedAt: now.Add(time.Second),
		})

		Expect(processor.Process(ctx, task)).To(Succeed())
		Expect(responder.calls).To(BeZero())
	})

	It("posts nothing when the responder declines", func() {
		responder.respondFn = func(context.Context, autoreply.Conversation) (*autoreply.Reply, error) {
			return &autoreply.Reply{Skip: true}, nil
		}

		Expect(processor.Process(ctx, task)).To(Succeed())
		Expect(appender.inputs).To(BeEmpty())
	})

	It("returns responder failures for retry", func() {
		responder.respondFn = func(context.Context, autoreply.Conversation) (*autoreply.Reply, error) {
			return nil, errors.New("rate limited")
		}

		Expect(processor.Process(ctx, task)).To(MatchError(ContainSubstring("rate limited")))
	})

	It("treats a thread locked in the meantime as done", func() {
		appender.appendFn = func(context.Context, int64, int64, service.AppendInput) (*model.Message, error) {
			return nil, &service.AuthorizationError{Reason: "thread 1 is locked"}
		}

		Expect(processor.Process(ctx, task)).To(Succeed())
	})
})
