package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/notify"
	"basegraph.app/courier/internal/store"
)

// transitionContext is what a support case transition sees once the thread, the actor's
// membership and the case are locked.
type transitionContext struct {
	stores       StoreProvider
	thread       *model.Thread
	actor        *model.Participant
	participants []model.Participant
	existing     *model.SupportCase // nil before the first escalation
	now          time.Time
}

type transitionResult struct {
	supportCase   *model.SupportCase
	narrative     string
	event         string
	notifications []queuedNotification
}

type transitionFunc func(ctx context.Context, tc *transitionContext) (*transitionResult, error)

// runTransition applies fn under the thread, participant and case row locks, narrates the
// result as a system message in the same transaction and fans out after commit.
func (s *supportService) runTransition(ctx context.Context, name string, threadID, actorID int64, fn transitionFunc) (*model.SupportCase, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: &threadID, UserID: &actorID})
	sc := logger.StartSpan(ctx, "support."+name)
	defer sc.End()
	ctx = sc.Context()

	var (
		result    *transitionResult
		narrative *model.Message
		members   []model.Participant
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

		existing, err := sp.SupportCases().GetByThreadForUpdate(ctx, threadID)
		if errors.Is(err, store.ErrNotFound) {
			existing = nil
		} else if err != nil {
			return wrapErr("locking support case", err)
		}

		participants, err := sp.Participants().ListByThread(ctx, threadID)
		if err != nil {
			return wrapErr("listing participants", err)
		}

		tc := &transitionContext{
			stores:       sp,
			thread:       thread,
			actor:        actor,
			participants: participants,
			existing:     existing,
			now:          s.clock.Now(),
		}
		if result, err = fn(ctx, tc); err != nil {
			return err
		}

		if narrative, err = appendSystem(ctx, sp, threadID, result.narrative, result.event, tc.now, s.newID); err != nil {
			return err
		}

		// Re-listed because a transition may add members.
		members, err = sp.Participants().ListByThread(ctx, threadID)
		return wrapErr("listing participants", err)
	})
	if err != nil {
		sc.RecordError(err)
		if IsApplication(err) {
			slog.ErrorContext(ctx, "support transition failed", "transition", name, "error", err)
		}
		return nil, err
	}

	s.metrics.transitions.WithLabelValues(name).Inc()

	s.fanout.dispatch(ctx, postCommit{
		threadID:      threadID,
		inboxUsers:    participantIDs(members),
		messages:      []model.Message{*narrative},
		notifications: result.notifications,
	})

	caseID := result.supportCase.ID
	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{CaseID: &caseID}), "support case updated",
		"transition", name,
		"status", result.supportCase.Status,
		"priority", result.supportCase.Priority)

	return result.supportCase, nil
}

func notificationPriority(p model.CasePriority) notify.Priority {
	switch p {
	case model.CasePriorityUrgent:
		return notify.PriorityUrgent
	case model.CasePriorityHigh:
		return notify.PriorityHigh
	default:
		return notify.PriorityNormal
	}
}

type casePayload struct {
	ThreadID int64              `json:"threadId"`
	CaseID   int64              `json:"caseId"`
	Status   model.CaseStatus   `json:"status"`
	Priority model.CasePriority `json:"priority"`
}

// caseNotifications builds one support notification per recipient.
func caseNotifications(sc *model.SupportCase, recipients []int64, typ, title, body string) []queuedNotification {
	payload, _ := json.Marshal(casePayload{
		ThreadID: sc.ThreadID,
		CaseID:   sc.ID,
		Status:   sc.Status,
		Priority: sc.Priority,
	})
	opts := notify.Options{BypassQuietHours: sc.Priority == model.CasePriorityUrgent}

	out := make([]queuedNotification, 0, len(recipients))
	for _, userID := range recipients {
		out = append(out, queuedNotification{
			notification: notify.Notification{
				UserID:   userID,
				Category: notify.CategorySupport,
				Priority: notificationPriority(sc.Priority),
				Type:     typ,
				Title:    title,
				Body:     body,
				Payload:  payload,
			},
			opts: opts,
		})
	}
	return out
}

// recipients lists participants other than the actor, skipping muted ones unless urgent,
// followed by extra user IDs. Each user appears once.
func recipients(tc *transitionContext, urgent bool, extra ...int64) []int64 {
	seen := map[int64]struct{}{tc.actor.UserID: {}}
	var out []int64
	add := func(userID int64) {
		if _, ok := seen[userID]; ok {
			return
		}
		seen[userID] = struct{}{}
		out = append(out, userID)
	}
	for _, p := range tc.participants {
		if p.Role == model.ParticipantRoleSystem {
			continue
		}
		if !urgent && p.IsMuted(tc.now) {
			continue
		}
		add(p.UserID)
	}
	for _, userID := range extra {
		add(userID)
	}
	return out
}
