package model

import "time"

// RetentionAudit records what one purge cycle removed from one thread.
// Rows are archived after RetainedUntil and deleted after a further grace period.
type RetentionAudit struct {
	ID               int64      `json:"id"`
	RunID            string     `json:"run_id"`
	ThreadID         int64      `json:"thread_id"`
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
