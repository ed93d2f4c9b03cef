package dto

import (
	"time"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/service"
)

type AttachmentRequest struct {
	FileName   string  `json:"file_name"`
	MimeType   string  `json:"mime_type,omitempty"`
	FileSize   int64   `json:"file_size"`
	StorageKey string  `json:"storage_key"`
	Checksum   *string `json:"checksum,omitempty"`
}

// AppendMessageRequest leaves field validation to the message service so every
// caller gets the same error text.
type AppendMessageRequest struct {
	MessageType string                `json:"message_type"`
	Body        string                `json:"body"`
	Attachments []AttachmentRequest   `json:"attachments,omitempty"`
	Metadata    model.MessageMetadata `json:"metadata"`
}

func (r AppendMessageRequest) ToInput() service.AppendInput {
	in := service.AppendInput{
		MessageType: model.MessageType(r.MessageType),
		Body:        r.Body,
		Metadata:    r.Metadata,
	}
	for _, a := range r.Attachments {
		in.Attachments = append(in.Attachments, service.AttachmentInput{
			FileName:   a.FileName,
			MimeType:   a.MimeType,
			FileSize:   a.FileSize,
			StorageKey: a.StorageKey,
			Checksum:   a.Checksum,
		})
	}
	return in
}

type MarkReadRequest struct {
	UpTo *time.Time `json:"up_to,omitempty"`
}

type AttachmentResponse struct {
	ID         int64     `json:"id,string"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	StorageKey string    `json:"storage_key"`
	Checksum   *string   `json:"checksum,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID          int64                 `json:"id,string"`
	ThreadID    int64                 `json:"thread_id,string"`
	SenderID    *int64                `json:"sender_id,omitempty,string"`
	MessageType model.MessageType     `json:"message_type"`
	Body        string                `json:"body"`
	Metadata    model.MessageMetadata `json:"metadata"`
	IsEdited    bool                  `json:"is_edited"`
	Attachments []AttachmentResponse  `json:"attachments"`
	CreatedAt   time.Time             `json:"created_at"`
}

func ToMessageResponse(m *model.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		MessageType: m.MessageType,
		Body:        m.Body,
		Metadata:    m.Metadata,
		IsEdited:    m.IsEdited,
		Attachments: make([]AttachmentResponse, 0, len(m.Attachments)),
		CreatedAt:   m.CreatedAt,
	}
	for _, a := range m.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:         a.ID,
			FileName:   a.FileName,
			MimeType:   a.MimeType,
			FileSize:   a.FileSize,
			StorageKey: a.StorageKey,
			Checksum:   a.Checksum,
			CreatedAt:  a.CreatedAt,
		})
	}
	return resp
}

type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

func ToMessageListResponse(messages []model.Message, page model.Page) *MessageListResponse {
	resp := &MessageListResponse{
		Messages: make([]*MessageResponse, 0, len(messages)),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, ToMessageResponse(&messages[i]))
	}
	return resp
}
