package events

import (
	"time"

	"basegraph.app/courier/internal/model"
)

type Kind string

const (
	KindMessageAppended        Kind = "MESSAGE_APPENDED"
	KindMessagesPurged         Kind = "MESSAGES_PURGED"
	KindRetentionAuditRecorded Kind = "RETENTION_AUDIT_RECORDED"
)

// Event is a domain notification. Events carry plain data only.
type Event interface {
	Kind() Kind
}

type MessageAppended struct {
	ThreadID int64         `json:"threadId"`
	Message  model.Message `json:"message"`
}

func (MessageAppended) Kind() Kind { return KindMessageAppended }

type MessagesPurged struct {
	ThreadID   int64     `json:"threadId"`
	DeletedIDs []int64   `json:"deletedIds"`
	Cutoff     time.Time `json:"cutoff"`
}

func (MessagesPurged) Kind() Kind { return KindMessagesPurged }

type RetentionAuditRecorded struct {
	RunID            string    `json:"runId"`
	AuditID          int64     `json:"auditId"`
	ThreadID         int64     `json:"threadId"`
	DeletedCount     int       `json:"deletedCount"`
	ParticipantCount int       `json:"participantCount"`
	RetentionPolicy  string    `json:"retentionPolicy"`
	RetentionDays    int       `json:"retentionDays"`
	IsOverride       bool      `json:"isOverride"`
	Cutoff           time.Time `json:"cutoff"`
}

func (RetentionAuditRecorded) Kind() Kind { return KindRetentionAuditRecorded }
