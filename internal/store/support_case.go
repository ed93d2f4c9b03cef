package store

import (
	"context"
	"encoding/json"

	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/model"
)

type supportCaseStore struct {
	queries *sqlc.Queries
}

func newSupportCaseStore(queries *sqlc.Queries) SupportCaseStore {
	return &supportCaseStore{queries: queries}
}

func (s *supportCaseStore) Create(ctx context.Context, sc *model.SupportCase) error {
	metadata, err := json.Marshal(sc.Metadata)
	if err != nil {
		return err
	}

	row, err := s.queries.CreateSupportCase(ctx, sqlc.CreateSupportCaseParams{
		ID:          sc.ID,
		ThreadID:    sc.ThreadID,
		Status:      string(sc.Status),
		Priority:    string(sc.Priority),
		Reason:      sc.Reason,
		Metadata:    metadata,
		EscalatedBy: sc.EscalatedBy,
		EscalatedAt: timestamptz(sc.EscalatedAt),
	})
	if err != nil {
		return err
	}
	created, err := toSupportCaseModel(row)
	if err != nil {
		return err
	}
	*sc = *created
	return nil
}

func (s *supportCaseStore) GetByThread(ctx context.Context, threadID int64) (*model.SupportCase, error) {
	row, err := s.queries.GetSupportCaseByThread(ctx, threadID)
	if err != nil {
		return nil, notFound(err)
	}
	return toSupportCaseModel(row)
}

func (s *supportCaseStore) GetByThreadForUpdate(ctx context.Context, threadID int64) (*model.SupportCase, error) {
	row, err := s.queries.GetSupportCaseByThreadForUpdate(ctx, threadID)
	if err != nil {
		return nil, notFound(err)
	}
	return toSupportCaseModel(row)
}

func (s *supportCaseStore) Update(ctx context.Context, sc *model.SupportCase) error {
	metadata, err := json.Marshal(sc.Metadata)
	if err != nil {
		return err
	}

	row, err := s.queries.UpdateSupportCase(ctx, sqlc.UpdateSupportCaseParams{
		ID:                sc.ID,
		Status:            string(sc.Status),
		Priority:          string(sc.Priority),
		Reason:            sc.Reason,
		Metadata:          metadata,
		EscalatedBy:       sc.EscalatedBy,
		EscalatedAt:       timestamptz(sc.EscalatedAt),
		AssignedTo:        sc.AssignedTo,
		AssignedBy:        sc.AssignedBy,
		AssignedAt:        timestamptzPtr(sc.AssignedAt),
		FirstResponseAt:   timestamptzPtr(sc.FirstResponseAt),
		ResolvedAt:        timestamptzPtr(sc.ResolvedAt),
		ResolvedBy:        sc.ResolvedBy,
		ResolutionSummary: sc.ResolutionSummary,
		UpdatedAt:         timestamptz(sc.UpdatedAt),
	})
	if err != nil {
		return notFound(err)
	}
	updated, err := toSupportCaseModel(row)
	if err != nil {
		return err
	}
	*sc = *updated
	return nil
}

func toSupportCaseModel(row sqlc.SupportCase) (*model.SupportCase, error) {
	var metadata model.CaseMetadata
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	return &model.SupportCase{
		ID:                row.ID,
		ThreadID:          row.ThreadID,
		Status:            model.CaseStatus(row.Status),
		Priority:          model.CasePriority(row.Priority),
		Reason:            row.Reason,
		Metadata:          metadata,
		EscalatedBy:       row.EscalatedBy,
		EscalatedAt:       row.EscalatedAt.Time,
		AssignedTo:        row.AssignedTo,
		AssignedBy:        row.AssignedBy,
		AssignedAt:        timePtr(row.AssignedAt),
		FirstResponseAt:   timePtr(row.FirstResponseAt),
		ResolvedAt:        timePtr(row.ResolvedAt),
		ResolvedBy:        row.ResolvedBy,
		ResolutionSummary: row.ResolutionSummary,
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}, nil
}
