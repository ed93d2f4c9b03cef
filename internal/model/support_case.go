package model

import "time"

type CaseStatus string

type CasePriority string

const (
	CaseStatusTriage            CaseStatus = "triage"
	CaseStatusInProgress        CaseStatus = "in_progress"
	CaseStatusWaitingOnCustomer CaseStatus = "waiting_on_customer"
	CaseStatusResolved          CaseStatus = "resolved"
	CaseStatusClosed            CaseStatus = "closed"
)

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusTriage, CaseStatusInProgress, CaseStatusWaitingOnCustomer, CaseStatusResolved, CaseStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status ends the case lifecycle until re-opened.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusResolved || s == CaseStatusClosed
}

func (p CasePriority) Valid() bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}

// SupportCase tracks the escalation of a thread. There is at most one per thread;
// re-escalation resets it rather than creating another.
type SupportCase struct {
	ID                int64        `json:"id"`
	ThreadID          int64        `json:"thread_id"`
	Status            CaseStatus   `json:"status"`
	Priority          CasePriority `json:"priority"`
	Reason            string       `json:"reason"`
	Metadata          CaseMetadata `json:"metadata"`
	EscalatedBy       int64        `json:"escalated_by"`
	EscalatedAt       time.Time    `json:"escalated_at"`
	AssignedTo        *int64       `json:"assigned_to,omitempty"`
	AssignedBy        *int64       `json:"assigned_by,omitempty"`
	AssignedAt        *time.Time   `json:"assigned_at,omitempty"`
	FirstResponseAt   *time.Time   `json:"first_response_at,omitempty"`
	ResolvedAt        *time.Time   `json:"resolved_at,omitempty"`
	ResolvedBy        *int64       `json:"resolved_by,omitempty"`
	ResolutionSummary *string      `json:"resolution_summary,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ClearResolution re-opens the case by dropping every resolution field.
func (c *SupportCase) ClearResolution() {
	c.ResolvedAt = nil
	c.ResolvedBy = nil
	c.ResolutionSummary = nil
}
