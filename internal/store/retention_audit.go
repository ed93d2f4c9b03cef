package store

import (
	"context"
	"time"

	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/model"
)

type retentionAuditStore struct {
	queries *sqlc.Queries
}

func newRetentionAuditStore(queries *sqlc.Queries) RetentionAuditStore {
	return &retentionAuditStore{queries: queries}
}

func (s *retentionAuditStore) Create(ctx context.Context, audit *model.RetentionAudit) error {
	row, err := s.queries.CreateRetentionAudit(ctx, sqlc.CreateRetentionAuditParams{
		ID:               audit.ID,
		RunID:            audit.RunID,
		ThreadID:         audit.ThreadID,
		RetentionPolicy:  audit.RetentionPolicy,
		RetentionDays:    int32(audit.RetentionDays),
		DeletedCount:     int32(audit.DeletedCount),
		ParticipantCount: int32(audit.ParticipantCount),
		CutoffAt:         timestamptz(audit.CutoffAt),
		IsOverride:       audit.IsOverride,
		RetainedUntil:    timestamptz(audit.RetainedUntil),
		CreatedAt:        timestamptz(audit.CreatedAt),
	})
	if err != nil {
		return err
	}
	*audit = toRetentionAuditModel(row)
	return nil
}

func (s *retentionAuditStore) ArchiveExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.queries.ArchiveExpiredRetentionAudits(ctx, timestamptz(now))
}

func (s *retentionAuditStore) DeleteArchivedBefore(ctx context.Context, before time.Time) (int64, error) {
	return s.queries.DeleteArchivedRetentionAudits(ctx, timestamptz(before))
}

func (s *retentionAuditStore) ListByThread(ctx context.Context, threadID int64, limit int) ([]model.RetentionAudit, error) {
	rows, err := s.queries.ListRetentionAuditsByThread(ctx, sqlc.ListRetentionAuditsByThreadParams{
		ThreadID: threadID,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return toRetentionAuditModels(rows), nil
}

func (s *retentionAuditStore) ListByRun(ctx context.Context, runID string) ([]model.RetentionAudit, error) {
	rows, err := s.queries.ListRetentionAuditsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return toRetentionAuditModels(rows), nil
}

func toRetentionAuditModels(rows []sqlc.RetentionAudit) []model.RetentionAudit {
	audits := make([]model.RetentionAudit, 0, len(rows))
	for _, row := range rows {
		audits = append(audits, toRetentionAuditModel(row))
	}
	return audits
}

func toRetentionAuditModel(row sqlc.RetentionAudit) model.RetentionAudit {
	return model.RetentionAudit{
		ID:               row.ID,
		RunID:            row.RunID,
		ThreadID:         row.ThreadID,
		RetentionPolicy:  row.RetentionPolicy,
		RetentionDays:    int(row.RetentionDays),
		DeletedCount:     int(row.DeletedCount),
		ParticipantCount: int(row.ParticipantCount),
		CutoffAt:         row.CutoffAt.Time,
		IsOverride:       row.IsOverride,
		RetainedUntil:    row.RetainedUntil.Time,
		ArchivedAt:       timePtr(row.ArchivedAt),
		CreatedAt:        row.CreatedAt.Time,
	}
}
