package notify

import (
	"context"
	"encoding/json"
	"log/slog"
)

type Category string

const (
	CategoryMessage Category = "message"
	CategorySupport Category = "support"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is handed to the external delivery service. Delivery itself happens elsewhere.
type Notification struct {
	UserID   int64           `json:"userId"`
	Category Category        `json:"category"`
	Priority Priority        `json:"priority"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type Options struct {
	BypassQuietHours bool `json:"bypassQuietHours"`
}

type Notifier interface {
	QueueNotification(ctx context.Context, n Notification, opts Options) error
}

// LogNotifier only logs notifications. Used when no queue is configured.
type LogNotifier struct{}

func (LogNotifier) QueueNotification(ctx context.Context, n Notification, opts Options) error {
	slog.InfoContext(ctx, "notification queued",
		"user_id", n.UserID,
		"category", n.Category,
		"type", n.Type,
		"priority", n.Priority,
		"bypass_quiet_hours", opts.BypassQuietHours)
	return nil
}
