package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/id"
	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/model"
)

type AttachmentInput struct {
	FileName   string
	MimeType   string
	FileSize   int64
	StorageKey string
	Checksum   *string
}

type AppendInput struct {
	MessageType model.MessageType
	Body        string
	Attachments []AttachmentInput
	Metadata    model.MessageMetadata
}

type MessageService interface {
	// Append writes a message under the thread row lock and advances the thread summary.
	Append(ctx context.Context, threadID, senderID int64, in AppendInput) (*model.Message, error)
	// List returns a page of the thread's messages in creation order.
	List(ctx context.Context, threadID, userID int64, page model.Page) ([]model.Message, error)
	// MarkRead records that userID has read the thread up to upTo, or up to now when nil.
	MarkRead(ctx context.Context, threadID, userID int64, upTo *time.Time) (*model.Participant, error)
}

type messageService struct {
	stores   StoreProvider
	txRunner TxRunner
	cache    cache.Cache
	cacheTTL time.Duration
	fanout   *Fanout
	guard    Guard
	clock    clock.Clock
	newID    id.Generator
	metrics  *Metrics
}

func (s *messageService) Append(ctx context.Context, threadID, senderID int64, in AppendInput) (*model.Message, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: &threadID, UserID: &senderID})
	sc := logger.StartSpan(ctx, "message.append")
	defer sc.End()
	ctx = sc.Context()

	var (
		msg          *model.Message
		participants []model.Participant
	)

	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		thread, err := lockThread(ctx, sp, threadID)
		if err != nil {
			return err
		}
		if thread.IsLocked() {
			return forbidden("thread %d is locked", threadID)
		}

		if _, err := s.guard.EnsureParticipant(ctx, sp, threadID, senderID, true); err != nil {
			return err
		}

		msg, err = s.buildMessage(threadID, senderID, in)
		if err != nil {
			return err
		}

		if err := sp.Messages().Create(ctx, msg); err != nil {
			return wrapErr("creating message", err)
		}
		for i := range msg.Attachments {
			if err := sp.Attachments().Create(ctx, &msg.Attachments[i]); err != nil {
				return wrapErr("creating attachment", err)
			}
		}

		if _, err := sp.Threads().TouchLastMessage(ctx, threadID, msg.CreatedAt, msg.Preview()); err != nil {
			return wrapErr("updating thread summary", err)
		}

		participants, err = sp.Participants().ListByThread(ctx, threadID)
		if err != nil {
			return wrapErr("listing participants", err)
		}
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		if IsApplication(err) {
			slog.ErrorContext(ctx, "failed to append message", "error", err)
		}
		return nil, err
	}

	s.metrics.messagesAppended.WithLabelValues(string(msg.MessageType)).Inc()

	work := postCommit{
		threadID:   threadID,
		inboxUsers: participantIDs(participants),
		messages:   []model.Message{*msg},
	}
	if wantsAutoReply(msg) {
		work.autoReply = &autoreply.Request{
			ThreadID:  threadID,
			MessageID: msg.ID,
			SenderID:  senderID,
			TraceID:   sc.TraceID(),
		}
	}
	s.fanout.dispatch(ctx, work)

	slog.InfoContext(ctx, "message appended",
		"message_id", msg.ID,
		"message_type", msg.MessageType,
		"attachments", len(msg.Attachments))

	return msg, nil
}

// buildMessage validates input and assembles the rows to insert.
func (s *messageService) buildMessage(threadID, senderID int64, in AppendInput) (*model.Message, error) {
	if !in.MessageType.Valid() {
		return nil, invalid("messageType", "unsupported message type %q", in.MessageType)
	}
	if len(in.Attachments) > model.MaxAttachments {
		return nil, invalid("attachments", "at most %d attachments are allowed", model.MaxAttachments)
	}

	body := in.Body
	if in.MessageType == model.MessageTypeText {
		body = strings.TrimSpace(body)
	}

	now := s.clock.Now()
	msg := &model.Message{
		ID:          s.newID(),
		ThreadID:    threadID,
		SenderID:    &senderID,
		MessageType: in.MessageType,
		Body:        body,
		Metadata:    in.Metadata,
		CreatedAt:   now,
	}

	for i, a := range in.Attachments {
		field := fmt.Sprintf("attachments[%d]", i)
		fileName := strings.TrimSpace(a.FileName)
		storageKey := strings.TrimSpace(a.StorageKey)
		switch {
		case fileName == "":
			return nil, invalid(field, "fileName is required")
		case storageKey == "":
			return nil, invalid(field, "storageKey is required")
		case a.FileSize < 0:
			return nil, invalid(field, "fileSize must not be negative")
		}

		mimeType := strings.TrimSpace(a.MimeType)
		if mimeType == "" {
			mimeType = model.DefaultMimeType
		}

		msg.Attachments = append(msg.Attachments, model.Attachment{
			ID:         s.newID(),
			MessageID:  msg.ID,
			FileName:   fileName,
			MimeType:   mimeType,
			FileSize:   a.FileSize,
			StorageKey: storageKey,
			Checksum:   a.Checksum,
			CreatedAt:  now,
		})
	}

	return msg, nil
}

// wantsAutoReply excludes empty, non-text and already automatic messages so replies never loop.
func wantsAutoReply(msg *model.Message) bool {
	return msg.MessageType == model.MessageTypeText &&
		msg.Body != "" &&
		!msg.Metadata.AutoReply
}

func (s *messageService) List(ctx context.Context, threadID, userID int64, page model.Page) ([]model.Message, error) {
	if _, err := s.guard.EnsureParticipant(ctx, s.stores, threadID, userID, false); err != nil {
		return nil, err
	}

	page = page.Normalize()
	messages, err := cache.Remember(ctx, s.cache, cache.ThreadMessages(threadID, page), s.cacheTTL,
		func(ctx context.Context) ([]model.Message, error) {
			return loadMessages(ctx, s.stores, threadID, page)
		})
	if err != nil {
		return nil, wrapErr("listing messages", err)
	}
	return messages, nil
}

func loadMessages(ctx context.Context, stores StoreProvider, threadID int64, page model.Page) ([]model.Message, error) {
	messages, err := stores.Messages().ListByThread(ctx, threadID, page)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return []model.Message{}, nil
	}

	ids := make([]int64, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	attachments, err := stores.Attachments().ListByMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		messages[i].Attachments = attachments[messages[i].ID]
	}
	return messages, nil
}

func (s *messageService) MarkRead(ctx context.Context, threadID, userID int64, upTo *time.Time) (*model.Participant, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: &threadID, UserID: &userID})

	at := s.clock.Now()
	if upTo != nil && upTo.Before(at) {
		at = upTo.UTC()
	}

	var participant *model.Participant
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if _, err := s.guard.EnsureParticipant(ctx, sp, threadID, userID, true); err != nil {
			return err
		}
		if err := sp.Participants().UpdateLastRead(ctx, threadID, userID, at); err != nil {
			return wrapErr("updating last read", err)
		}
		if err := sp.Messages().InsertReadReceipts(ctx, threadID, userID, at); err != nil {
			return wrapErr("recording read receipts", err)
		}

		var err error
		participant, err = sp.Participants().Get(ctx, threadID, userID)
		return wrapErr("reloading participant", err)
	})
	if err != nil {
		return nil, err
	}

	s.fanout.dispatch(ctx, postCommit{threadID: threadID, inboxUsers: []int64{userID}})
	return participant, nil
}

// appendSystem writes a narrative message inside the caller's transaction. System
// messages have no sender and bypass the locked-thread check.
func appendSystem(ctx context.Context, sp StoreProvider, threadID int64, body string, event string, now time.Time, newID id.Generator) (*model.Message, error) {
	msg := &model.Message{
		ID:          newID(),
		ThreadID:    threadID,
		MessageType: model.MessageTypeSystem,
		Body:        body,
		Metadata:    model.MessageMetadata{Event: &event},
		CreatedAt:   now,
	}
	if err := sp.Messages().Create(ctx, msg); err != nil {
		return nil, wrapErr("creating system message", err)
	}
	if _, err := sp.Threads().TouchLastMessage(ctx, threadID, now, msg.Preview()); err != nil {
		return nil, wrapErr("updating thread summary", err)
	}
	return msg, nil
}
