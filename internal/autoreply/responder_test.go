package autoreply_test

import (
	"context"
	"encoding/json"
	"errors"

	"basegraph.app/courier/common/llm"
	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ptr[T any](v T) *T { return &v }

func answer(shouldReply bool, reply string) func(context.Context, llm.Request, any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		raw, _ := json.Marshal(map[string]any{"should_reply": shouldReply, "reply": reply})
		return &llm.Response{}, json.Unmarshal(raw, result)
	}
}

var _ = Describe("LLMResponder", func() {
	var (
		ctx  context.Context
		conv autoreply.Conversation
	)

	BeforeEach(func() {
		ctx = context.Background()
		trigger := model.Message{ID: 3, SenderID: ptr(int64(11)), MessageType: model.MessageTypeText, Body: "Is the logo ready?"}
		conv = autoreply.Conversation{
			Thread: model.Thread{ID: 1, ChannelType: model.ChannelTypeProject, Subject: ptr("Logo design")},
			History: []model.Message{
				{ID: 1, SenderID: ptr(int64(11)), MessageType: model.MessageTypeText, Body: "Hi"},
				{ID: 2, SenderID: ptr(int64(99)), MessageType: model.MessageTypeText, Body: "Hello!", Metadata: model.MessageMetadata{AutoReply: true}},
				{ID: 4, MessageType: model.MessageTypeSystem, Body: "Support case escalated"},
				trigger,
			},
			Trigger:     trigger,
			AssistantID: 99,
		}
	})

	It("returns the drafted reply", func() {
		client := &mockLLMClient{chatFn: answer(true, "  The designer will update you shortly.  ")}
		reply, err := autoreply.NewLLMResponder(client).Respond(ctx, conv)

		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Skip).To(BeFalse())
		Expect(reply.Body).To(Equal("The designer will update you shortly."))

		Expect(client.lastReq.SchemaName).To(Equal("auto_reply"))
		Expect(client.lastReq.SystemPrompt).To(ContainSubstring("subject: Logo design"))
		Expect(client.lastReq.Messages).To(HaveLen(3))
		Expect(client.lastReq.Messages[0].Name).To(Equal("user_11"))
		Expect(client.lastReq.Messages[1].Role).To(Equal(llm.RoleAssistant))
	})

	It("skips when the model declines", func() {
		client := &mockLLMClient{chatFn: answer(false, "")}
		reply, err := autoreply.NewLLMResponder(client).Respond(ctx, conv)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Skip).To(BeTrue())
	})

	It("does not retry context cancellation", func() {
		client := &mockLLMClient{chatFn: func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, context.Canceled
		}}
		_, err := autoreply.NewLLMResponder(client).Respond(ctx, conv)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(client.callCount).To(Equal(1))
	})
})

var _ = Describe("StaticResponder", func() {
	It("replies with the configured text", func() {
		reply, err := autoreply.StaticResponder{Text: "Thanks, we will be in touch."}.Respond(context.Background(), autoreply.Conversation{})
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Body).To(Equal("Thanks, we will be in touch."))
	})

	It("skips when empty", func() {
		reply, err := autoreply.StaticResponder{}.Respond(context.Background(), autoreply.Conversation{})
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Skip).To(BeTrue())
	})
})
