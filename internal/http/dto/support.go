package dto

import (
	"time"

	"basegraph.app/courier/internal/model"
)

type EscalateRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Priority string `json:"priority,omitempty"`
}

// PriorityOrDefault treats an omitted priority as medium.
func (r EscalateRequest) PriorityOrDefault() model.CasePriority {
	if r.Priority == "" {
		return model.CasePriorityMedium
	}
	return model.CasePriority(r.Priority)
}

type AssignRequest struct {
	AgentID     int64 `json:"agent_id" binding:"required"`
	NotifyAgent *bool `json:"notify_agent,omitempty"`
}

func (r AssignRequest) ShouldNotify() bool {
	return r.NotifyAgent == nil || *r.NotifyAgent
}

type UpdateCaseStatusRequest struct {
	Status            string  `json:"status" binding:"required"`
	ResolutionSummary *string `json:"resolution_summary,omitempty" binding:"omitempty,max=4000"`
}

type SupportCaseResponse struct {
	ID                int64              `json:"id,string"`
	ThreadID          int64              `json:"thread_id,string"`
	Status            model.CaseStatus   `json:"status"`
	Priority          model.CasePriority `json:"priority"`
	Reason            string             `json:"reason"`
	Metadata          model.CaseMetadata `json:"metadata"`
	EscalatedBy       int64              `json:"escalated_by,string"`
	EscalatedAt       time.Time          `json:"escalated_at"`
	AssignedTo        *int64             `json:"assigned_to,omitempty,string"`
	AssignedAt        *time.Time         `json:"assigned_at,omitempty"`
	FirstResponseAt   *time.Time         `json:"first_response_at,omitempty"`
	ResolvedAt        *time.Time         `json:"resolved_at,omitempty"`
	ResolvedBy        *int64             `json:"resolved_by,omitempty,string"`
	ResolutionSummary *string            `json:"resolution_summary,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func ToSupportCaseResponse(sc *model.SupportCase) *SupportCaseResponse {
	return &SupportCaseResponse{
		ID:                sc.ID,
		ThreadID:          sc.ThreadID,
		Status:            sc.Status,
		Priority:          sc.Priority,
		Reason:            sc.Reason,
		Metadata:          sc.Metadata,
		EscalatedBy:       sc.EscalatedBy,
		EscalatedAt:       sc.EscalatedAt,
		AssignedTo:        sc.AssignedTo,
		AssignedAt:        sc.AssignedAt,
		FirstResponseAt:   sc.FirstResponseAt,
		ResolvedAt:        sc.ResolvedAt,
		ResolvedBy:        sc.ResolvedBy,
		ResolutionSummary: sc.ResolutionSummary,
		CreatedAt:         sc.CreatedAt,
		UpdatedAt:         sc.UpdatedAt,
	}
}
