package dto

import (
	"time"

	"basegraph.app/courier/internal/model"
)

type RetentionAuditResponse struct {
	ID               int64      `json:"id,string"`
	RunID            string     `json:"run_id"`
	ThreadID         int64      `json:"thread_id,string"`
	RetentionPolicy  string     `json:"retention_policy"`
	RetentionDays    int        `json:"retention_days"`
	DeletedCount     int        `json:"deleted_count"`
	ParticipantCount int        `json:"participant_count"`
	CutoffAt         time.Time  `json:"cutoff_at"`
	IsOverride       bool       `json:"is_override"`
	RetainedUntil    time.Time  `json:"retained_until"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func ToRetentionAuditResponses(audits []model.RetentionAudit) []RetentionAuditResponse {
	resp := make([]RetentionAuditResponse, 0, len(audits))
	for _, a := range audits {
		resp = append(resp, RetentionAuditResponse{
			ID:               a.ID,
			RunID:            a.RunID,
			ThreadID:         a.ThreadID,
			RetentionPolicy:  a.RetentionPolicy,
			RetentionDays:    a.RetentionDays,
			DeletedCount:     a.DeletedCount,
			ParticipantCount: a.ParticipantCount,
			CutoffAt:         a.CutoffAt,
			IsOverride:       a.IsOverride,
			RetainedUntil:    a.RetainedUntil,
			ArchivedAt:       a.ArchivedAt,
			CreatedAt:        a.CreatedAt,
		})
	}
	return resp
}
