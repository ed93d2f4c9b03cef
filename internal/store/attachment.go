package store

import (
	"context"

	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/model"
)

type attachmentStore struct {
	queries *sqlc.Queries
}

func newAttachmentStore(queries *sqlc.Queries) AttachmentStore {
	return &attachmentStore{queries: queries}
}

func (s *attachmentStore) Create(ctx context.Context, attachment *model.Attachment) error {
	row, err := s.queries.CreateAttachment(ctx, sqlc.CreateAttachmentParams{
		ID:         attachment.ID,
		MessageID:  attachment.MessageID,
		FileName:   attachment.FileName,
		MimeType:   attachment.MimeType,
		FileSize:   attachment.FileSize,
		StorageKey: attachment.StorageKey,
		Checksum:   attachment.Checksum,
		CreatedAt:  timestamptz(attachment.CreatedAt),
	})
	if err != nil {
		return err
	}
	*attachment = toAttachmentModel(row)
	return nil
}

func (s *attachmentStore) ListByMessages(ctx context.Context, messageIDs []int64) (map[int64][]model.Attachment, error) {
	result := make(map[int64][]model.Attachment)
	if len(messageIDs) == 0 {
		return result, nil
	}
	rows, err := s.queries.ListAttachmentsByMessageIDs(ctx, messageIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.MessageID] = append(result[row.MessageID], toAttachmentModel(row))
	}
	return result, nil
}

func (s *attachmentStore) DeleteByMessages(ctx context.Context, messageIDs []int64) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	return s.queries.DeleteAttachmentsByMessageIDs(ctx, messageIDs)
}

func toAttachmentModel(row sqlc.MessageAttachment) model.Attachment {
	return model.Attachment{
		ID:         row.ID,
		MessageID:  row.MessageID,
		FileName:   row.FileName,
		MimeType:   row.MimeType,
		FileSize:   row.FileSize,
		StorageKey: row.StorageKey,
		Checksum:   row.Checksum,
		CreatedAt:  row.CreatedAt.Time,
	}
}
