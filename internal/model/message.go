package model

import "time"

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
	MessageTypeEvent  MessageType = "event"
)

func (m MessageType) Valid() bool {
	switch m {
	case MessageTypeText, MessageTypeFile, MessageTypeSystem, MessageTypeEvent:
		return true
	}
	return false
}

// DefaultMimeType is recorded for attachments uploaded without a content type.
const DefaultMimeType = "application/octet-stream"

// MaxAttachments is the most attachments one message may carry.
const MaxAttachments = 5

type Message struct {
	ID          int64           `json:"id"`
	ThreadID    int64           `json:"thread_id"`
	SenderID    *int64          `json:"sender_id,omitempty"` // nil for system messages
	MessageType MessageType     `json:"message_type"`
	Body        string          `json:"body"`
	Metadata    MessageMetadata `json:"metadata"`
	IsEdited    bool            `json:"is_edited"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Attachments []Attachment    `json:"attachments,omitempty"`
}

// SentBy reports whether userID authored the message.
func (m *Message) SentBy(userID int64) bool {
	return m.SenderID != nil && *m.SenderID == userID
}

// Preview is the text stored on the thread as its last message preview: the body as stored.
func (m *Message) Preview() *string {
	body := m.Body
	return &body
}

type Attachment struct {
	ID         int64     `json:"id"`
	MessageID  int64     `json:"message_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	StorageKey string    `json:"storage_key"`
	Checksum   *string   `json:"checksum,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReadReceipt struct {
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
