package queue

import "fmt"

type TaskType string

const (
	TaskTypeAutoReply TaskType = "auto_reply"
)

// AutoReplyTask asks the worker to consider an automatic reply to one message.
type AutoReplyTask struct {
	ThreadID  int64
	MessageID int64
	SenderID  int64
	TraceID   *string
	Attempt   int
}

// AutoReplyDedupeKey marks a message as already handed to the stream.
func AutoReplyDedupeKey(messageID int64) string {
	return fmt.Sprintf("courier:autoreply:%d", messageID)
}
