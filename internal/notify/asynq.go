package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const TaskTypeDeliver = "notification:deliver"

// TaskEnqueuer is the subset of *asynq.Client used here.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type AsynqConfig struct {
	Queue    string
	MaxRetry int
}

// DeliverPayload is the task body consumed by the delivery service.
type DeliverPayload struct {
	Notification Notification `json:"notification"`
	Options      Options      `json:"options"`
}

type AsynqNotifier struct {
	client TaskEnqueuer
	cfg    AsynqConfig
}

func NewAsynqNotifier(client TaskEnqueuer, cfg AsynqConfig) *AsynqNotifier {
	if cfg.Queue == "" {
		cfg.Queue = "notifications"
	}
	return &AsynqNotifier{client: client, cfg: cfg}
}

var _ Notifier = (*AsynqNotifier)(nil)

func (a *AsynqNotifier) QueueNotification(ctx context.Context, n Notification, opts Options) error {
	payload, err := json.Marshal(DeliverPayload{Notification: n, Options: opts})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	asynqOpts := []asynq.Option{asynq.Queue(a.cfg.Queue)}
	if a.cfg.MaxRetry > 0 {
		asynqOpts = append(asynqOpts, asynq.MaxRetry(a.cfg.MaxRetry))
	}

	info, err := a.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeDeliver, payload), asynqOpts...)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	slog.DebugContext(ctx, "notification enqueued",
		"task_id", info.ID,
		"user_id", n.UserID,
		"type", n.Type)
	return nil
}
