package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/queue"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store"
)

const historyLimit = 20

// AutoReplyProcessor answers one triggering message on behalf of the assistant user.
// The assistant only speaks in threads it has been added to.
type AutoReplyProcessor struct {
	stores      StoreProvider
	responder   autoreply.Responder
	appender    Appender
	assistantID int64
}

func NewAutoReplyProcessor(stores StoreProvider, responder autoreply.Responder, appender Appender, assistantID int64) *AutoReplyProcessor {
	return &AutoReplyProcessor{
		stores:      stores,
		responder:   responder,
		appender:    appender,
		assistantID: assistantID,
	}
}

// Process returns nil for every outcome that retrying cannot change.
func (p *AutoReplyProcessor) Process(ctx context.Context, msg queue.Message) error {
	if msg.TaskType != queue.TaskTypeAutoReply {
		slog.WarnContext(ctx, "unsupported task type, skipping", "task_type", msg.TaskType)
		return nil
	}
	if msg.SenderID == p.assistantID {
		return nil
	}

	trigger, err := p.stores.Messages().GetByID(ctx, msg.MessageID)
	if errors.Is(err, store.ErrNotFound) {
		slog.InfoContext(ctx, "triggering message no longer exists, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading message: %w", err)
	}
	if trigger.ThreadID != msg.ThreadID || trigger.Metadata.AutoReply {
		slog.WarnContext(ctx, "task does not match a replyable message, skipping",
			"stored_thread_id", trigger.ThreadID)
		return nil
	}

	thread, err := p.stores.Threads().GetByID(ctx, msg.ThreadID)
	if err != nil {
		return fmt.Errorf("loading thread: %w", err)
	}
	if thread.IsLocked() {
		slog.InfoContext(ctx, "thread is locked, skipping auto-reply")
		return nil
	}

	if _, err := p.stores.Participants().Get(ctx, thread.ID, p.assistantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.DebugContext(ctx, "assistant is not a participant, skipping")
			return nil
		}
		return fmt.Errorf("loading assistant membership: %w", err)
	}

	history, err := p.stores.Messages().ListRecent(ctx, thread.ID, historyLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	replyTo := strconv.FormatInt(trigger.ID, 10)
	if alreadyAnswered(history, replyTo) {
		slog.InfoContext(ctx, "message already answered, skipping")
		return nil
	}

	reply, err := p.responder.Respond(ctx, autoreply.Conversation{
		Thread:      *thread,
		History:     history,
		Trigger:     *trigger,
		AssistantID: p.assistantID,
	})
	if err != nil {
		return fmt.Errorf("drafting reply: %w", err)
	}
	if reply == nil || reply.Skip || reply.Body == "" {
		slog.InfoContext(ctx, "responder chose not to reply")
		return nil
	}

	posted, err := p.appender.Append(ctx, thread.ID, p.assistantID, service.AppendInput{
		MessageType: model.MessageTypeText,
		Body:        reply.Body,
		Metadata: model.MessageMetadata{
			AutoReply: true,
			ReplyToID: &replyTo,
		},
	})
	if service.IsAuthorization(err) || service.IsNotFound(err) {
		slog.InfoContext(ctx, "thread no longer accepts the reply, skipping", "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("posting reply: %w", err)
	}

	slog.InfoContext(ctx, "auto-reply posted", "reply_id", posted.ID)
	return nil
}

// alreadyAnswered guards against posting twice when an ack was lost after a successful append.
func alreadyAnswered(history []model.Message, replyTo string) bool {
	for _, m := range history {
		if m.Metadata.AutoReply && m.Metadata.ReplyToID != nil && *m.Metadata.ReplyToID == replyTo {
			return true
		}
	}
	return false
}
