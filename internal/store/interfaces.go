package store

import (
	"context"
	"errors"
	"time"

	"basegraph.app/courier/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ThreadStore defines the contract for thread data access
type ThreadStore interface {
	Create(ctx context.Context, thread *model.Thread) error
	GetByID(ctx context.Context, id int64) (*model.Thread, error)
	// GetForUpdate row-locks the thread until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Thread, error)
	// TouchLastMessage advances last_message_at to at unless it is already later.
	TouchLastMessage(ctx context.Context, id int64, at time.Time, preview *string) (*model.Thread, error)
	SetState(ctx context.Context, id int64, state model.ThreadState, at time.Time) (*model.Thread, error)
	// SetSummary overwrites the preview. A nil lastMessageAt keeps the stored value.
	SetSummary(ctx context.Context, id int64, lastMessageAt *time.Time, preview *string, at time.Time) error
	ListForRetention(ctx context.Context, limit int) ([]model.Thread, error)
	MarkRetentionChecked(ctx context.Context, id int64, at time.Time) error
	ListInbox(ctx context.Context, userID int64, page model.Page) ([]model.InboxEntry, error)
}

// ParticipantStore defines the contract for thread membership data access
type ParticipantStore interface {
	// Add inserts the membership, or loads the existing row when the user already belongs.
	Add(ctx context.Context, participant *model.Participant) error
	Get(ctx context.Context, threadID, userID int64) (*model.Participant, error)
	GetForUpdate(ctx context.Context, threadID, userID int64) (*model.Participant, error)
	ListByThread(ctx context.Context, threadID int64) ([]model.Participant, error)
	CountByThread(ctx context.Context, threadID int64) (int, error)
	UpdateLastRead(ctx context.Context, threadID, userID int64, at time.Time) error
}

// MessageStore defines the contract for message data access
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByThread(ctx context.Context, threadID int64, page model.Page) ([]model.Message, error)
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	GetLatest(ctx context.Context, threadID int64) (*model.Message, error)
	// ListRecent returns the newest limit messages of the thread in creation order.
	ListRecent(ctx context.Context, threadID int64, limit int) ([]model.Message, error)
	// CountUnread counts messages after since that userID did not send. A nil since counts all.
	CountUnread(ctx context.Context, threadID, userID int64, since *time.Time) (int64, error)
	// ListExpiredIDs returns up to limit IDs created strictly before cutoff, oldest first.
	ListExpiredIDs(ctx context.Context, threadID int64, cutoff time.Time, limit int) ([]int64, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	// InsertReadReceipts records userID as having read every message up to at.
	InsertReadReceipts(ctx context.Context, threadID, userID int64, at time.Time) error
	DeleteReadReceipts(ctx context.Context, messageIDs []int64) (int64, error)
}

// AttachmentStore defines the contract for message attachment data access
type AttachmentStore interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	ListByMessages(ctx context.Context, messageIDs []int64) (map[int64][]model.Attachment, error)
	DeleteByMessages(ctx context.Context, messageIDs []int64) (int64, error)
}

// SupportCaseStore defines the contract for support case data access
type SupportCaseStore interface {
	Create(ctx context.Context, sc *model.SupportCase) error
	GetByThread(ctx context.Context, threadID int64) (*model.SupportCase, error)
	GetByThreadForUpdate(ctx context.Context, threadID int64) (*model.SupportCase, error)
	Update(ctx context.Context, sc *model.SupportCase) error
}

// RetentionAuditStore defines the contract for the retention audit ledger
type RetentionAuditStore interface {
	Create(ctx context.Context, audit *model.RetentionAudit) error
	// ArchiveExpired stamps archived_at on live rows whose retained_until is before now.
	ArchiveExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteArchivedBefore(ctx context.Context, before time.Time) (int64, error)
	ListByThread(ctx context.Context, threadID int64, limit int) ([]model.RetentionAudit, error)
	ListByRun(ctx context.Context, runID string) ([]model.RetentionAudit, error)
}
