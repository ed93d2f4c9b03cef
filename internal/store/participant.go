package store

import (
	"context"
	"time"

	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/model"
)

type participantStore struct {
	queries *sqlc.Queries
}

func newParticipantStore(queries *sqlc.Queries) ParticipantStore {
	return &participantStore{queries: queries}
}

func (s *participantStore) Add(ctx context.Context, participant *model.Participant) error {
	row, err := s.queries.AddParticipant(ctx, sqlc.AddParticipantParams{
		ThreadID:             participant.ThreadID,
		UserID:               participant.UserID,
		Role:                 string(participant.Role),
		NotificationsEnabled: participant.NotificationsEnabled,
		JoinedAt:             timestamptz(participant.JoinedAt),
	})
	if err != nil {
		return err
	}
	*participant = *toParticipantModel(row)
	return nil
}

func (s *participantStore) Get(ctx context.Context, threadID, userID int64) (*model.Participant, error) {
	row, err := s.queries.GetParticipant(ctx, sqlc.GetParticipantParams{
		ThreadID: threadID,
		UserID:   userID,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toParticipantModel(row), nil
}

func (s *participantStore) GetForUpdate(ctx context.Context, threadID, userID int64) (*model.Participant, error) {
	row, err := s.queries.GetParticipantForUpdate(ctx, sqlc.GetParticipantForUpdateParams{
		ThreadID: threadID,
		UserID:   userID,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toParticipantModel(row), nil
}

func (s *participantStore) ListByThread(ctx context.Context, threadID int64) ([]model.Participant, error) {
	rows, err := s.queries.ListParticipants(ctx, threadID)
	if err != nil {
		return nil, err
	}
	participants := make([]model.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, *toParticipantModel(row))
	}
	return participants, nil
}

func (s *participantStore) CountByThread(ctx context.Context, threadID int64) (int, error) {
	count, err := s.queries.CountParticipants(ctx, threadID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *participantStore) UpdateLastRead(ctx context.Context, threadID, userID int64, at time.Time) error {
	return s.queries.UpdateParticipantLastRead(ctx, sqlc.UpdateParticipantLastReadParams{
		ThreadID: threadID,
		UserID:   userID,
		ReadAt:   timestamptz(at),
	})
}

func toParticipantModel(row sqlc.ThreadParticipant) *model.Participant {
	return &model.Participant{
		ThreadID:             row.ThreadID,
		UserID:               row.UserID,
		Role:                 model.ParticipantRole(row.Role),
		LastReadAt:           timePtr(row.LastReadAt),
		MutedUntil:           timePtr(row.MutedUntil),
		NotificationsEnabled: row.NotificationsEnabled,
		JoinedAt:             row.JoinedAt.Time,
	}
}
