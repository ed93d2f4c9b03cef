package store

import (
	"context"
	"encoding/json"
	"time"

	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/model"
)

type messageStore struct {
	queries *sqlc.Queries
}

func newMessageStore(queries *sqlc.Queries) MessageStore {
	return &messageStore{queries: queries}
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) error {
	metadata, err := json.Marshal(msg.Metadata)
	if err != nil {
		return err
	}

	row, err := s.queries.CreateMessage(ctx, sqlc.CreateMessageParams{
		ID:          msg.ID,
		ThreadID:    msg.ThreadID,
		SenderID:    msg.SenderID,
		MessageType: string(msg.MessageType),
		Body:        msg.Body,
		Metadata:    metadata,
		DeliveredAt: timestamptzPtr(msg.DeliveredAt),
		CreatedAt:   timestamptz(msg.CreatedAt),
	})
	if err != nil {
		return err
	}
	created, err := toMessageModel(row)
	if err != nil {
		return err
	}
	created.Attachments = msg.Attachments
	*msg = *created
	return nil
}

func (s *messageStore) ListByThread(ctx context.Context, threadID int64, page model.Page) ([]model.Message, error) {
	page = page.Normalize()
	rows, err := s.queries.ListThreadMessages(ctx, sqlc.ListThreadMessagesParams{
		ThreadID: threadID,
		Limit:    int32(page.Limit),
		Offset:   int32(page.Offset),
	})
	if err != nil {
		return nil, err
	}
	messages := make([]model.Message, 0, len(rows))
	for _, row := range rows {
		m, err := toMessageModel(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, nil
}

func (s *messageStore) GetLatest(ctx context.Context, threadID int64) (*model.Message, error) {
	row, err := s.queries.GetLatestThreadMessage(ctx, threadID)
	if err != nil {
		return nil, notFound(err)
	}
	return toMessageModel(row)
}

func (s *messageStore) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	row, err := s.queries.GetMessage(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toMessageModel(row)
}

// ListRecent returns the newest limit messages, oldest first.
func (s *messageStore) ListRecent(ctx context.Context, threadID int64, limit int) ([]model.Message, error) {
	rows, err := s.queries.ListRecentThreadMessages(ctx, sqlc.ListRecentThreadMessagesParams{
		ThreadID: threadID,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, err
	}
	messages := make([]model.Message, len(rows))
	for i, row := range rows {
		m, err := toMessageModel(row)
		if err != nil {
			return nil, err
		}
		messages[len(rows)-1-i] = *m
	}
	return messages, nil
}

func (s *messageStore) CountUnread(ctx context.Context, threadID, userID int64, since *time.Time) (int64, error) {
	return s.queries.CountUnreadMessages(ctx, sqlc.CountUnreadMessagesParams{
		ThreadID: threadID,
		UserID:   userID,
		Since:    timestamptzPtr(since),
	})
}

func (s *messageStore) ListExpiredIDs(ctx context.Context, threadID int64, cutoff time.Time, limit int) ([]int64, error) {
	return s.queries.ListExpiredMessageIDs(ctx, sqlc.ListExpiredMessageIDsParams{
		ThreadID:  threadID,
		CreatedAt: timestamptz(cutoff),
		Limit:     int32(limit),
	})
}

func (s *messageStore) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.queries.DeleteMessagesByIDs(ctx, ids)
}

func (s *messageStore) InsertReadReceipts(ctx context.Context, threadID, userID int64, at time.Time) error {
	return s.queries.InsertReadReceipts(ctx, sqlc.InsertReadReceiptsParams{
		ThreadID: threadID,
		UserID:   userID,
		ReadAt:   timestamptz(at),
	})
}

func (s *messageStore) DeleteReadReceipts(ctx context.Context, messageIDs []int64) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	return s.queries.DeleteReadReceiptsByMessageIDs(ctx, messageIDs)
}

func toMessageModel(row sqlc.Message) (*model.Message, error) {
	var metadata model.MessageMetadata
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	return &model.Message{
		ID:          row.ID,
		ThreadID:    row.ThreadID,
		SenderID:    row.SenderID,
		MessageType: model.MessageType(row.MessageType),
		Body:        row.Body,
		Metadata:    metadata,
		IsEdited:    row.IsEdited,
		DeliveredAt: timePtr(row.DeliveredAt),
		ReadAt:      timePtr(row.ReadAt),
		DeletedAt:   timePtr(row.DeletedAt),
		CreatedAt:   row.CreatedAt.Time,
	}, nil
}
