package autoreply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/courier/common/llm"
	"basegraph.app/courier/internal/model"
)

// Conversation is the context a Responder sees for one triggering message.
type Conversation struct {
	Thread      model.Thread
	History     []model.Message // oldest first, includes Trigger
	Trigger     model.Message
	AssistantID int64
}

type Reply struct {
	Body string
	Skip bool
}

type Responder interface {
	Respond(ctx context.Context, conv Conversation) (*Reply, error)
}

type replyResponse struct {
	ShouldReply bool   `json:"should_reply" jsonschema_description:"False when the message needs no automatic answer"`
	Reply       string `json:"reply" jsonschema_description:"Reply text shown in the thread, empty when should_reply is false"`
}

var replySchema = llm.GenerateSchema[replyResponse]()

const (
	replyPromptVersion = "v1"
	maxHistory         = 20
	maxAttempts        = 3
)

// LLMResponder drafts replies with a structured chat completion.
type LLMResponder struct {
	llm   llm.Client
	sleep func(ctx context.Context, d time.Duration) error
}

func NewLLMResponder(client llm.Client) *LLMResponder {
	return &LLMResponder{llm: client, sleep: sleepContext}
}

func (r *LLMResponder) Respond(ctx context.Context, conv Conversation) (*Reply, error) {
	history := conv.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	req := llm.Request{
		SystemPrompt: buildSystemPrompt(conv.Thread),
		Messages:     toLLMMessages(history, conv.AssistantID),
		SchemaName:   "auto_reply",
		Schema:       replySchema,
		Temperature:  llm.Temp(0.3),
	}

	var response replyResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		_, err = r.llm.Chat(ctx, req, &response)
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			return nil, fmt.Errorf("drafting auto-reply: %w", err)
		}
		slog.WarnContext(ctx, "auto-reply draft retry",
			"attempt", attempt+1,
			"error", err)
		if sleepErr := r.sleep(ctx, time.Duration(1<<attempt)*time.Second); sleepErr != nil {
			return nil, sleepErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("drafting auto-reply after %d attempts: %w", maxAttempts, err)
	}

	body := strings.TrimSpace(response.Reply)
	if !response.ShouldReply || body == "" {
		return &Reply{Skip: true}, nil
	}

	slog.InfoContext(ctx, "auto-reply drafted",
		"model", r.llm.Model(),
		"prompt_version", replyPromptVersion,
		"reply_len", len(body))

	return &Reply{Body: body}, nil
}

// StaticResponder answers every message with the same text. Used when no model is configured.
type StaticResponder struct {
	Text string
}

func (s StaticResponder) Respond(_ context.Context, _ Conversation) (*Reply, error) {
	if strings.TrimSpace(s.Text) == "" {
		return &Reply{Skip: true}, nil
	}
	return &Reply{Body: s.Text}, nil
}

func toLLMMessages(history []model.Message, assistantID int64) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.MessageType != model.MessageTypeText {
			continue
		}
		body := strings.TrimSpace(m.Body)
		if body == "" {
			continue
		}
		if m.Metadata.AutoReply || m.SentBy(assistantID) {
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: body})
			continue
		}
		name := "participant"
		if m.SenderID != nil {
			name = llm.SanitizeName(fmt.Sprintf("user_%d", *m.SenderID))
		}
		out = append(out, llm.Message{Role: llm.RoleUser, Name: name, Content: body})
	}
	return out
}

func buildSystemPrompt(thread model.Thread) string {
	var sb strings.Builder
	sb.WriteString(autoReplySystemPrompt)
	sb.WriteString("\n\n## Thread\n")
	sb.WriteString(fmt.Sprintf("- channel: %s\n", thread.ChannelType))
	if thread.Subject != nil && *thread.Subject != "" {
		sb.WriteString(fmt.Sprintf("- subject: %s\n", *thread.Subject))
	}
	if thread.Metadata.Topic != nil && *thread.Metadata.Topic != "" {
		sb.WriteString(fmt.Sprintf("- topic: %s\n", *thread.Metadata.Topic))
	}
	return sb.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const autoReplySystemPrompt = `You are the automatic first responder in a marketplace conversation between clients and freelancers.

Reply only when a short acknowledgement or a factual pointer helps the sender while the other party is away.
Never promise delivery dates, prices, refunds or policy exceptions. Never ask for payment details or contact information outside the platform.
Keep replies under 80 words, in the language of the last message, without greetings longer than one word.

Set should_reply to false when the message is small talk, a thank-you, or already answered in the conversation.`
