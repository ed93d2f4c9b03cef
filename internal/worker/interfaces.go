package worker

import (
	"context"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/queue"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// StoreProvider is the read side the processor needs to build a conversation.
type StoreProvider interface {
	Threads() store.ThreadStore
	Participants() store.ParticipantStore
	Messages() store.MessageStore
}

// Appender posts a reply through the regular message pipeline.
type Appender interface {
	Append(ctx context.Context, threadID, senderID int64, in service.AppendInput) (*model.Message, error)
}

// TaskProcessor handles one parsed stream entry.
type TaskProcessor interface {
	Process(ctx context.Context, msg queue.Message) error
}
