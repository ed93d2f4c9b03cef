package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/id"
	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/store"
)

type CreateThreadInput struct {
	CreatedBy       int64
	Subject         *string
	ChannelType     model.ChannelType
	ParticipantIDs  []int64
	Metadata        model.ThreadMetadata
	RetentionPolicy *string
	RetentionDays   *int
}

// ThreadView is a thread as one participant sees it.
type ThreadView struct {
	Thread       model.Thread
	Participants []model.Participant
	Caller       model.Participant
	UnreadCount  int64
}

// threadDetail is the cacheable, caller-independent part of a ThreadView.
type threadDetail struct {
	Thread       model.Thread        `json:"thread"`
	Participants []model.Participant `json:"participants"`
}

type ThreadService interface {
	Create(ctx context.Context, in CreateThreadInput) (*model.Thread, error)
	Get(ctx context.Context, threadID, userID int64) (*ThreadView, error)
	ListInbox(ctx context.Context, userID int64, page model.Page) ([]model.InboxEntry, error)
	SetState(ctx context.Context, threadID, actorID int64, state model.ThreadState) (*model.Thread, error)
	AddParticipant(ctx context.Context, threadID, actorID, userID int64, role model.ParticipantRole) (*model.Participant, error)
}

type threadService struct {
	stores   StoreProvider
	txRunner TxRunner
	cache    cache.Cache
	cacheTTL time.Duration
	fanout   *Fanout
	guard    Guard
	policies *retention.Policies
	clock    clock.Clock
	newID    id.Generator
}

func (s *threadService) Create(ctx context.Context, in CreateThreadInput) (*model.Thread, error) {
	if !in.ChannelType.Valid() {
		return nil, invalid("channelType", "unsupported channel type %q", in.ChannelType)
	}
	if in.CreatedBy <= 0 {
		return nil, invalid("createdBy", "must be a positive user id")
	}
	if in.RetentionDays != nil && *in.RetentionDays <= 0 {
		return nil, invalid("retentionDays", "must be positive")
	}

	members := []int64{in.CreatedBy}
	for _, userID := range in.ParticipantIDs {
		if userID <= 0 {
			return nil, invalid("participantIds", "user id %d is not valid", userID)
		}
		if !slices.Contains(members, userID) {
			members = append(members, userID)
		}
	}

	subject := in.Subject
	if subject != nil {
		trimmed := strings.TrimSpace(*subject)
		subject = &trimmed
		if trimmed == "" {
			subject = nil
		}
	}

	policy := s.policies.Resolve(in.ChannelType, in.RetentionPolicy, in.RetentionDays)
	now := s.clock.Now()
	thread := &model.Thread{
		ID:              s.newID(),
		Subject:         subject,
		ChannelType:     in.ChannelType,
		State:           model.ThreadStateActive,
		CreatedBy:       in.CreatedBy,
		Metadata:        in.Metadata.Sanitize(),
		RetentionPolicy: policy.Name,
		RetentionDays:   policy.Days,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if err := sp.Threads().Create(ctx, thread); err != nil {
			return wrapErr("creating thread", err)
		}
		for _, userID := range members {
			role := model.ParticipantRoleParticipant
			if userID == in.CreatedBy {
				role = model.ParticipantRoleOwner
			}
			if err := sp.Participants().Add(ctx, &model.Participant{
				ThreadID:             thread.ID,
				UserID:               userID,
				Role:                 role,
				NotificationsEnabled: true,
				JoinedAt:             now,
			}); err != nil {
				return wrapErr("adding participant", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fanout.dispatch(ctx, postCommit{inboxUsers: members})

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{ThreadID: &thread.ID, UserID: &in.CreatedBy}),
		"thread created",
		"channel_type", thread.ChannelType,
		"participants", len(members),
		"retention_policy", thread.RetentionPolicy,
		"retention_days", thread.RetentionDays)

	return thread, nil
}

func (s *threadService) Get(ctx context.Context, threadID, userID int64) (*ThreadView, error) {
	if _, err := s.stores.Threads().GetByID(ctx, threadID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "thread", ID: threadID}
		}
		return nil, wrapErr("loading thread", err)
	}

	caller, err := s.guard.EnsureParticipant(ctx, s.stores, threadID, userID, false)
	if err != nil {
		return nil, err
	}

	detail, err := cache.Remember(ctx, s.cache, cache.ThreadDetail(threadID), s.cacheTTL,
		func(ctx context.Context) (threadDetail, error) {
			thread, err := s.stores.Threads().GetByID(ctx, threadID)
			if err != nil {
				return threadDetail{}, err
			}
			participants, err := s.stores.Participants().ListByThread(ctx, threadID)
			if err != nil {
				return threadDetail{}, err
			}
			return threadDetail{Thread: *thread, Participants: participants}, nil
		})
	if err != nil {
		return nil, wrapErr("loading thread detail", err)
	}

	unread, err := s.stores.Messages().CountUnread(ctx, threadID, userID, caller.LastReadAt)
	if err != nil {
		return nil, wrapErr("counting unread messages", err)
	}

	return &ThreadView{
		Thread:       detail.Thread,
		Participants: detail.Participants,
		Caller:       *caller,
		UnreadCount:  unread,
	}, nil
}

func (s *threadService) ListInbox(ctx context.Context, userID int64, page model.Page) ([]model.InboxEntry, error) {
	page = page.Normalize()
	entries, err := cache.Remember(ctx, s.cache, cache.Inbox(userID, page), s.cacheTTL,
		func(ctx context.Context) ([]model.InboxEntry, error) {
			entries, err := s.stores.Threads().ListInbox(ctx, userID, page)
			if entries == nil && err == nil {
				entries = []model.InboxEntry{}
			}
			return entries, err
		})
	if err != nil {
		return nil, wrapErr("listing inbox", err)
	}
	return entries, nil
}

// stateChangers may lock, archive or reactivate a thread.
var stateChangers = []model.ParticipantRole{
	model.ParticipantRoleOwner,
	model.ParticipantRoleSupport,
	model.ParticipantRoleSystem,
}

func (s *threadService) SetState(ctx context.Context, threadID, actorID int64, state model.ThreadState) (*model.Thread, error) {
	if !state.Valid() {
		return nil, invalid("state", "unsupported thread state %q", state)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: &threadID, UserID: &actorID})

	var (
		updated      *model.Thread
		narrative    *model.Message
		participants []model.Participant
	)
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		thread, err := lockThread(ctx, sp, threadID)
		if err != nil {
			return err
		}
		actor, err := s.guard.EnsureParticipant(ctx, sp, threadID, actorID, true)
		if err != nil {
			return err
		}
		if !slices.Contains(stateChangers, actor.Role) {
			return forbidden("role %s cannot change thread state", actor.Role)
		}
		if thread.State == state {
			updated = thread
			return nil
		}

		now := s.clock.Now()
		if updated, err = sp.Threads().SetState(ctx, threadID, state, now); err != nil {
			return wrapErr("updating thread state", err)
		}

		body := fmt.Sprintf("Thread state changed from %s to %s", thread.State, state)
		if narrative, err = appendSystem(ctx, sp, threadID, body, "thread."+string(state), now, s.newID); err != nil {
			return err
		}

		participants, err = sp.Participants().ListByThread(ctx, threadID)
		return wrapErr("listing participants", err)
	})
	if err != nil {
		return nil, err
	}
	if narrative == nil {
		return updated, nil
	}

	s.fanout.dispatch(ctx, postCommit{
		threadID:   threadID,
		inboxUsers: participantIDs(participants),
		messages:   []model.Message{*narrative},
	})

	slog.InfoContext(ctx, "thread state changed", "state", state)
	return updated, nil
}

func (s *threadService) AddParticipant(ctx context.Context, threadID, actorID, userID int64, role model.ParticipantRole) (*model.Participant, error) {
	if userID <= 0 {
		return nil, invalid("userId", "must be a positive user id")
	}
	if role == "" {
		role = model.ParticipantRoleParticipant
	}
	if !role.Valid() || role == model.ParticipantRoleOwner {
		return nil, invalid("role", "unsupported participant role %q", role)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: &threadID, UserID: &actorID})

	var (
		participant *model.Participant
		narrative   *model.Message
		members     []model.Participant
	)
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		thread, err := lockThread(ctx, sp, threadID)
		if err != nil {
			return err
		}
		if thread.IsLocked() {
			return forbidden("thread %d is locked", threadID)
		}
		if _, err := s.guard.EnsureParticipant(ctx, sp, threadID, actorID, true); err != nil {
			return err
		}

		var added bool
		participant, added, err = addParticipant(ctx, sp, threadID, userID, role, s.clock.Now())
		if err != nil || !added {
			return err
		}

		body := fmt.Sprintf("User %d joined the thread", userID)
		if narrative, err = appendSystem(ctx, sp, threadID, body, "thread.participant_added", participant.JoinedAt, s.newID); err != nil {
			return err
		}

		members, err = sp.Participants().ListByThread(ctx, threadID)
		return wrapErr("listing participants", err)
	})
	if err != nil {
		return nil, err
	}
	if narrative == nil {
		return participant, nil
	}

	s.fanout.dispatch(ctx, postCommit{
		threadID:   threadID,
		inboxUsers: participantIDs(members),
		messages:   []model.Message{*narrative},
	})

	slog.InfoContext(ctx, "participant added", "participant_id", userID, "role", role)
	return participant, nil
}

// addParticipant inserts the membership unless it exists. added is false for an existing member.
func addParticipant(ctx context.Context, sp StoreProvider, threadID, userID int64, role model.ParticipantRole, now time.Time) (*model.Participant, bool, error) {
	existing, err := sp.Participants().Get(ctx, threadID, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, wrapErr("loading participant", err)
	}

	participant := &model.Participant{
		ThreadID:             threadID,
		UserID:               userID,
		Role:                 role,
		NotificationsEnabled: true,
		JoinedAt:             now,
	}
	if err := sp.Participants().Add(ctx, participant); err != nil {
		return nil, false, wrapErr("adding participant", err)
	}
	return participant, true, nil
}
