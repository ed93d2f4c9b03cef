package dto

import (
	"time"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/service"
)

type CreateThreadRequest struct {
	Subject         *string              `json:"subject,omitempty" binding:"omitempty,max=255"`
	ChannelType     string               `json:"channel_type" binding:"required"`
	ParticipantIDs  []int64              `json:"participant_ids"`
	Metadata        model.ThreadMetadata `json:"metadata"`
	RetentionPolicy *string              `json:"retention_policy,omitempty"`
	RetentionDays   *int                 `json:"retention_days,omitempty"`
}

func (r CreateThreadRequest) ToInput(createdBy int64) service.CreateThreadInput {
	return service.CreateThreadInput{
		CreatedBy:       createdBy,
		Subject:         r.Subject,
		ChannelType:     model.ChannelType(r.ChannelType),
		ParticipantIDs:  r.ParticipantIDs,
		Metadata:        r.Metadata,
		RetentionPolicy: r.RetentionPolicy,
		RetentionDays:   r.RetentionDays,
	}
}

type SetThreadStateRequest struct {
	State string `json:"state" binding:"required"`
}

type AddParticipantRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Role   string `json:"role,omitempty"`
}

type ThreadResponse struct {
	ID                 int64                `json:"id,string"`
	Subject            *string              `json:"subject,omitempty"`
	ChannelType        model.ChannelType    `json:"channel_type"`
	State              model.ThreadState    `json:"state"`
	CreatedBy          int64                `json:"created_by,string"`
	Metadata           model.ThreadMetadata `json:"metadata"`
	LastMessageAt      *time.Time           `json:"last_message_at,omitempty"`
	LastMessagePreview *string              `json:"last_message_preview,omitempty"`
	RetentionPolicy    string               `json:"retention_policy"`
	RetentionDays      int                  `json:"retention_days"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func ToThreadResponse(t *model.Thread) *ThreadResponse {
	return &ThreadResponse{
		ID:                 t.ID,
		Subject:            t.Subject,
		ChannelType:        t.ChannelType,
		State:              t.State,
		CreatedBy:          t.CreatedBy,
		Metadata:           t.Metadata,
		LastMessageAt:      t.LastMessageAt,
		LastMessagePreview: t.LastMessagePreview,
		RetentionPolicy:    t.RetentionPolicy,
		RetentionDays:      t.RetentionDays,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

type ParticipantResponse struct {
	UserID               int64                 `json:"user_id,string"`
	Role                 model.ParticipantRole `json:"role"`
	LastReadAt           *time.Time            `json:"last_read_at,omitempty"`
	MutedUntil           *time.Time            `json:"muted_until,omitempty"`
	NotificationsEnabled bool                  `json:"notifications_enabled"`
	JoinedAt             time.Time             `json:"joined_at"`
}

func ToParticipantResponse(p *model.Participant) ParticipantResponse {
	return ParticipantResponse{
		UserID:               p.UserID,
		Role:                 p.Role,
		LastReadAt:           p.LastReadAt,
		MutedUntil:           p.MutedUntil,
		NotificationsEnabled: p.NotificationsEnabled,
		JoinedAt:             p.JoinedAt,
	}
}

type ThreadDetailResponse struct {
	Thread       *ThreadResponse       `json:"thread"`
	Participants []ParticipantResponse `json:"participants"`
	Role         model.ParticipantRole `json:"role"`
	LastReadAt   *time.Time            `json:"last_read_at,omitempty"`
	UnreadCount  int64                 `json:"unread_count"`
}

func ToThreadDetailResponse(v *service.ThreadView) *ThreadDetailResponse {
	participants := make([]ParticipantResponse, 0, len(v.Participants))
	for i := range v.Participants {
		participants = append(participants, ToParticipantResponse(&v.Participants[i]))
	}
	return &ThreadDetailResponse{
		Thread:       ToThreadResponse(&v.Thread),
		Participants: participants,
		Role:         v.Caller.Role,
		LastReadAt:   v.Caller.LastReadAt,
		UnreadCount:  v.UnreadCount,
	}
}

type InboxEntryResponse struct {
	Thread      *ThreadResponse       `json:"thread"`
	Role        model.ParticipantRole `json:"role"`
	LastReadAt  *time.Time            `json:"last_read_at,omitempty"`
	UnreadCount int64                 `json:"unread_count"`
}

type InboxResponse struct {
	Entries []InboxEntryResponse `json:"entries"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

func ToInboxResponse(entries []model.InboxEntry, page model.Page) *InboxResponse {
	resp := &InboxResponse{
		Entries: make([]InboxEntryResponse, 0, len(entries)),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	for i := range entries {
		e := &entries[i]
		resp.Entries = append(resp.Entries, InboxEntryResponse{
			Thread:      ToThreadResponse(&e.Thread),
			Role:        e.Role,
			LastReadAt:  e.LastReadAt,
			UnreadCount: e.UnreadCount,
		})
	}
	return resp
}
