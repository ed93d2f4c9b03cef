package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/id"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/store"
)

type EscalateInput struct {
	Reason   string
	Priority model.CasePriority
}

type UpdateStatusInput struct {
	Status            model.CaseStatus
	ResolutionSummary *string
}

type SupportService interface {
	// Escalate opens the thread's support case, or resets the existing one back to triage.
	Escalate(ctx context.Context, threadID, actorID int64, in EscalateInput) (*model.SupportCase, error)
	Assign(ctx context.Context, threadID, actorID, agentID int64, notifyAgent bool) (*model.SupportCase, error)
	UpdateStatus(ctx context.Context, threadID, actorID int64, in UpdateStatusInput) (*model.SupportCase, error)
	GetCase(ctx context.Context, threadID, userID int64) (*model.SupportCase, error)
}

type supportService struct {
	stores   StoreProvider
	txRunner TxRunner
	cache    cache.Cache
	cacheTTL time.Duration
	fanout   *Fanout
	guard    Guard
	roster   []int64
	clock    clock.Clock
	newID    id.Generator
	metrics  *Metrics
}

func (s *supportService) Escalate(ctx context.Context, threadID, actorID int64, in EscalateInput) (*model.SupportCase, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, invalid("reason", "is required")
	}
	if !in.Priority.Valid() {
		return nil, invalid("priority", "unsupported priority %q", in.Priority)
	}

	return s.runTransition(ctx, "escalate", threadID, actorID, func(ctx context.Context, tc *transitionContext) (*transitionResult, error) {
		sc := tc.existing
		if sc == nil {
			sc = &model.SupportCase{
				ID:          s.newID(),
				ThreadID:    threadID,
				Status:      model.CaseStatusTriage,
				Priority:    in.Priority,
				Reason:      reason,
				Metadata:    model.CaseMetadata{EscalationCount: 1},
				EscalatedBy: actorID,
				EscalatedAt: tc.now,
				CreatedAt:   tc.now,
				UpdatedAt:   tc.now,
			}
			if err := tc.stores.SupportCases().Create(ctx, sc); err != nil {
				return nil, wrapErr("creating support case", err)
			}
		} else {
			if sc.Status == model.CaseStatusInProgress && sc.AssignedTo != nil {
				slog.WarnContext(ctx, "re-escalating a case that is being worked",
					"case_id", sc.ID,
					"assigned_to", *sc.AssignedTo)
			}
			sc.Priority = in.Priority
			sc.Reason = reason
			sc.EscalatedBy = actorID
			sc.EscalatedAt = tc.now
			sc.Status = model.CaseStatusTriage
			sc.ClearResolution()
			sc.Metadata.EscalationCount++
			sc.UpdatedAt = tc.now
			if err := tc.stores.SupportCases().Update(ctx, sc); err != nil {
				return nil, wrapErr("resetting support case", err)
			}
		}

		urgent := in.Priority == model.CasePriorityUrgent
		narrative := fmt.Sprintf("Thread escalated to support (%s priority): %s", in.Priority, reason)
		return &transitionResult{
			supportCase: sc,
			narrative:   narrative,
			event:       "support.escalated",
			notifications: caseNotifications(sc, recipients(tc, urgent, s.roster...),
				"support.escalated", "Thread escalated to support", reason),
		}, nil
	})
}

func (s *supportService) Assign(ctx context.Context, threadID, actorID, agentID int64, notifyAgent bool) (*model.SupportCase, error) {
	if agentID <= 0 {
		return nil, invalid("agentId", "must be a positive user id")
	}

	return s.runTransition(ctx, "assign", threadID, actorID, func(ctx context.Context, tc *transitionContext) (*transitionResult, error) {
		sc := tc.existing
		if sc == nil {
			return nil, &NotFoundError{Entity: "support case", ID: threadID}
		}

		sc.AssignedTo = &agentID
		sc.AssignedBy = &actorID
		sc.AssignedAt = &tc.now
		if sc.FirstResponseAt == nil {
			sc.FirstResponseAt = &tc.now
		}
		if sc.Status == model.CaseStatusTriage {
			sc.Status = model.CaseStatusInProgress
		}
		sc.UpdatedAt = tc.now
		if err := tc.stores.SupportCases().Update(ctx, sc); err != nil {
			return nil, wrapErr("assigning support case", err)
		}

		if _, _, err := addParticipant(ctx, tc.stores, threadID, agentID, model.ParticipantRoleSupport, tc.now); err != nil {
			return nil, err
		}

		result := &transitionResult{
			supportCase: sc,
			narrative:   fmt.Sprintf("Support case assigned to user %d", agentID),
			event:       "support.assigned",
		}
		if notifyAgent && agentID != actorID {
			result.notifications = caseNotifications(sc, []int64{agentID},
				"support.assigned", "Support case assigned to you", sc.Reason)
		}
		return result, nil
	})
}

func (s *supportService) UpdateStatus(ctx context.Context, threadID, actorID int64, in UpdateStatusInput) (*model.SupportCase, error) {
	if !in.Status.Valid() {
		return nil, invalid("status", "unsupported status %q", in.Status)
	}

	return s.runTransition(ctx, "status", threadID, actorID, func(ctx context.Context, tc *transitionContext) (*transitionResult, error) {
		sc := tc.existing
		if sc == nil {
			return nil, &NotFoundError{Entity: "support case", ID: threadID}
		}

		previous := sc.Status
		if previous.Terminal() && !in.Status.Terminal() && in.Status != model.CaseStatusWaitingOnCustomer {
			return nil, invalid("status", "case is %s; reopen it with %s or escalate again",
				previous, model.CaseStatusWaitingOnCustomer)
		}

		sc.Status = in.Status
		switch in.Status {
		case model.CaseStatusInProgress:
			if sc.FirstResponseAt == nil {
				sc.FirstResponseAt = &tc.now
			}
		case model.CaseStatusResolved, model.CaseStatusClosed:
			sc.ResolvedAt = &tc.now
			sc.ResolvedBy = &actorID
			if in.ResolutionSummary != nil {
				if summary := strings.TrimSpace(*in.ResolutionSummary); summary != "" {
					sc.ResolutionSummary = &summary
				}
			}
		case model.CaseStatusWaitingOnCustomer:
			sc.ClearResolution()
		}
		sc.UpdatedAt = tc.now
		if err := tc.stores.SupportCases().Update(ctx, sc); err != nil {
			return nil, wrapErr("updating support case", err)
		}

		narrative := fmt.Sprintf("Support case status changed from %s to %s", previous, in.Status)
		if sc.ResolutionSummary != nil && in.Status.Terminal() {
			narrative += ": " + *sc.ResolutionSummary
		}

		result := &transitionResult{
			supportCase: sc,
			narrative:   narrative,
			event:       "support." + string(in.Status),
		}
		if in.Status.Terminal() {
			body := narrative
			result.notifications = caseNotifications(sc, recipients(tc, true),
				"support."+string(in.Status), "Support case "+string(in.Status), body)
		}
		return result, nil
	})
}

func (s *supportService) GetCase(ctx context.Context, threadID, userID int64) (*model.SupportCase, error) {
	if _, err := s.guard.EnsureParticipant(ctx, s.stores, threadID, userID, false); err != nil {
		return nil, err
	}

	sc, err := cache.Remember(ctx, s.cache, cache.ThreadCase(threadID), s.cacheTTL,
		func(ctx context.Context) (*model.SupportCase, error) {
			return s.stores.SupportCases().GetByThread(ctx, threadID)
		})
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: "support case", ID: threadID}
	}
	if err != nil {
		return nil, wrapErr("loading support case", err)
	}
	return sc, nil
}
