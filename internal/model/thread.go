package model

import "time"

type ChannelType string

type ThreadState string

type ParticipantRole string

const (
	ChannelTypeDirect   ChannelType = "direct"
	ChannelTypeGroup    ChannelType = "group"
	ChannelTypeSupport  ChannelType = "support"
	ChannelTypeProject  ChannelType = "project"
	ChannelTypeContract ChannelType = "contract"
)

const (
	ThreadStateActive   ThreadState = "active"
	ThreadStateArchived ThreadState = "archived"
	ThreadStateLocked   ThreadState = "locked"
)

const (
	ParticipantRoleOwner       ParticipantRole = "owner"
	ParticipantRoleParticipant ParticipantRole = "participant"
	ParticipantRoleSupport     ParticipantRole = "support"
	ParticipantRoleSystem      ParticipantRole = "system"
)

func (c ChannelType) Valid() bool {
	switch c {
	case ChannelTypeDirect, ChannelTypeGroup, ChannelTypeSupport, ChannelTypeProject, ChannelTypeContract:
		return true
	}
	return false
}

func (s ThreadState) Valid() bool {
	switch s {
	case ThreadStateActive, ThreadStateArchived, ThreadStateLocked:
		return true
	}
	return false
}

func (r ParticipantRole) Valid() bool {
	switch r {
	case ParticipantRoleOwner, ParticipantRoleParticipant, ParticipantRoleSupport, ParticipantRoleSystem:
		return true
	}
	return false
}

// Thread is a conversation between participants. Threads are never hard-deleted;
// only the messages inside them age out through retention.
type Thread struct {
	ID                 int64          `json:"id"`
	Subject            *string        `json:"subject,omitempty"`
	ChannelType        ChannelType    `json:"channel_type"`
	State              ThreadState    `json:"state"`
	CreatedBy          int64          `json:"created_by"`
	Metadata           ThreadMetadata `json:"metadata"`
	LastMessageAt      *time.Time     `json:"last_message_at,omitempty"` // never moves backward
	LastMessagePreview *string        `json:"last_message_preview,omitempty"`
	RetentionPolicy    string         `json:"retention_policy"`
	RetentionDays      int            `json:"retention_days"`
	RetentionCheckedAt *time.Time     `json:"retention_checked_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (t *Thread) IsLocked() bool {
	return t.State == ThreadStateLocked
}

// Participant is the membership row that gates every thread-scoped operation.
type Participant struct {
	ThreadID             int64           `json:"thread_id"`
	UserID               int64           `json:"user_id"`
	Role                 ParticipantRole `json:"role"`
	LastReadAt           *time.Time      `json:"last_read_at,omitempty"`
	MutedUntil           *time.Time      `json:"muted_until,omitempty"`
	NotificationsEnabled bool            `json:"notifications_enabled"`
	JoinedAt             time.Time       `json:"joined_at"`
}

// IsMuted reports whether notifications for this participant are suppressed at now.
func (p *Participant) IsMuted(now time.Time) bool {
	if !p.NotificationsEnabled {
		return true
	}
	return p.MutedUntil != nil && p.MutedUntil.After(now)
}

// InboxEntry is one row of a user's inbox: the thread plus the caller's read state.
type InboxEntry struct {
	Thread      Thread          `json:"thread"`
	Role        ParticipantRole `json:"role"`
	LastReadAt  *time.Time      `json:"last_read_at,omitempty"`
	UnreadCount int64           `json:"unread_count"`
}

// Page is a limit/offset window. Zero values are replaced by Normalize.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
