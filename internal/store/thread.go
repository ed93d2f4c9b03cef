package store

import (
	"context"
	"encoding/json"
	"time"

	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/model"
)

type threadStore struct {
	queries *sqlc.Queries
}

func newThreadStore(queries *sqlc.Queries) ThreadStore {
	return &threadStore{queries: queries}
}

func (s *threadStore) Create(ctx context.Context, thread *model.Thread) error {
	metadata, err := json.Marshal(thread.Metadata)
	if err != nil {
		return err
	}

	row, err := s.queries.CreateThread(ctx, sqlc.CreateThreadParams{
		ID:              thread.ID,
		Subject:         thread.Subject,
		ChannelType:     string(thread.ChannelType),
		State:           string(thread.State),
		CreatedBy:       thread.CreatedBy,
		Metadata:        metadata,
		RetentionPolicy: thread.RetentionPolicy,
		RetentionDays:   int32(thread.RetentionDays),
		CreatedAt:       timestamptz(thread.CreatedAt),
	})
	if err != nil {
		return err
	}
	created, err := toThreadModel(row)
	if err != nil {
		return err
	}
	*thread = *created
	return nil
}

func (s *threadStore) GetByID(ctx context.Context, id int64) (*model.Thread, error) {
	row, err := s.queries.GetThread(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toThreadModel(row)
}

func (s *threadStore) GetForUpdate(ctx context.Context, id int64) (*model.Thread, error) {
	row, err := s.queries.GetThreadForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toThreadModel(row)
}

func (s *threadStore) TouchLastMessage(ctx context.Context, id int64, at time.Time, preview *string) (*model.Thread, error) {
	row, err := s.queries.TouchThreadLastMessage(ctx, sqlc.TouchThreadLastMessageParams{
		ID:      id,
		At:      timestamptz(at),
		Preview: preview,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toThreadModel(row)
}

func (s *threadStore) SetState(ctx context.Context, id int64, state model.ThreadState, at time.Time) (*model.Thread, error) {
	row, err := s.queries.UpdateThreadState(ctx, sqlc.UpdateThreadStateParams{
		ID:        id,
		State:     string(state),
		UpdatedAt: timestamptz(at),
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toThreadModel(row)
}

func (s *threadStore) SetSummary(ctx context.Context, id int64, lastMessageAt *time.Time, preview *string, at time.Time) error {
	return s.queries.UpdateThreadSummary(ctx, sqlc.UpdateThreadSummaryParams{
		ID:                 id,
		LastMessageAt:      timestamptzPtr(lastMessageAt),
		LastMessagePreview: preview,
		UpdatedAt:          timestamptz(at),
	})
}

func (s *threadStore) ListForRetention(ctx context.Context, limit int) ([]model.Thread, error) {
	rows, err := s.queries.ListThreadsForRetention(ctx, int32(limit))
	if err != nil {
		return nil, err
	}
	threads := make([]model.Thread, 0, len(rows))
	for _, row := range rows {
		t, err := toThreadModel(row)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *t)
	}
	return threads, nil
}

func (s *threadStore) MarkRetentionChecked(ctx context.Context, id int64, at time.Time) error {
	return s.queries.MarkThreadRetentionChecked(ctx, sqlc.MarkThreadRetentionCheckedParams{
		ID:                 id,
		RetentionCheckedAt: timestamptz(at),
	})
}

func (s *threadStore) ListInbox(ctx context.Context, userID int64, page model.Page) ([]model.InboxEntry, error) {
	page = page.Normalize()
	rows, err := s.queries.ListInboxThreads(ctx, sqlc.ListInboxThreadsParams{
		UserID: userID,
		Limit:  int32(page.Limit),
		Offset: int32(page.Offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]model.InboxEntry, 0, len(rows))
	for _, row := range rows {
		t, err := toThreadModel(sqlc.Thread{
			ID:                 row.ID,
			Subject:            row.Subject,
			ChannelType:        row.ChannelType,
			State:              row.State,
			CreatedBy:          row.CreatedBy,
			Metadata:           row.Metadata,
			LastMessageAt:      row.LastMessageAt,
			LastMessagePreview: row.LastMessagePreview,
			RetentionPolicy:    row.RetentionPolicy,
			RetentionDays:      row.RetentionDays,
			RetentionCheckedAt: row.RetentionCheckedAt,
			CreatedAt:          row.CreatedAt,
			UpdatedAt:          row.UpdatedAt,
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.InboxEntry{
			Thread:      *t,
			Role:        model.ParticipantRole(row.ParticipantRole),
			LastReadAt:  timePtr(row.ParticipantLastReadAt),
			UnreadCount: row.UnreadCount,
		})
	}
	return entries, nil
}

func toThreadModel(row sqlc.Thread) (*model.Thread, error) {
	var metadata model.ThreadMetadata
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	return &model.Thread{
		ID:                 row.ID,
		Subject:            row.Subject,
		ChannelType:        model.ChannelType(row.ChannelType),
		State:              model.ThreadState(row.State),
		CreatedBy:          row.CreatedBy,
		Metadata:           metadata,
		LastMessageAt:      timePtr(row.LastMessageAt),
		LastMessagePreview: row.LastMessagePreview,
		RetentionPolicy:    row.RetentionPolicy,
		RetentionDays:      int(row.RetentionDays),
		RetentionCheckedAt: timePtr(row.RetentionCheckedAt),
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}, nil
}
