package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// eventsStreamMaxLen caps the realtime events stream. Consumers only care about recent events.
const eventsStreamMaxLen = 10000

type Producer interface {
	// EnqueueAutoReply appends the task to the auto-reply stream. It reports false without
	// error when the message was already enqueued within the dedupe window.
	EnqueueAutoReply(ctx context.Context, task AutoReplyTask) (bool, error)
	PublishEvent(ctx context.Context, kind string, payload []byte) error
	Close() error
}

type ProducerConfig struct {
	AutoReplyStream string
	EventsStream    string
	DedupeWindow    time.Duration
}

type redisProducer struct {
	client redis.UniversalClient
	cfg    ProducerConfig
	logger *slog.Logger
}

func NewRedisProducer(client redis.UniversalClient, cfg ProducerConfig, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = 24 * time.Hour
	}
	return &redisProducer{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (p *redisProducer) EnqueueAutoReply(ctx context.Context, task AutoReplyTask) (bool, error) {
	dedupeKey := AutoReplyDedupeKey(task.MessageID)
	fresh, err := p.client.SetNX(ctx, dedupeKey, 1, p.cfg.DedupeWindow).Result()
	if err != nil {
		return false, fmt.Errorf("claiming auto-reply dedupe key: %w", err)
	}
	if !fresh {
		p.logger.DebugContext(ctx, "auto-reply already enqueued", "message_id", task.MessageID)
		return false, nil
	}

	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":  string(TaskTypeAutoReply),
		"thread_id":  task.ThreadID,
		"message_id": task.MessageID,
		"sender_id":  task.SenderID,
		"attempt":    attempt,
	}

	if task.TraceID != nil && *task.TraceID != "" {
		fields["trace_id"] = *task.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.cfg.AutoReplyStream,
		Values: fields,
	}).Err(); err != nil {
		// Release the claim so a later attempt is not silently deduped.
		_ = p.client.Del(context.WithoutCancel(ctx), dedupeKey).Err()
		return false, fmt.Errorf("enqueue auto-reply: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued auto-reply", "thread_id", task.ThreadID, "message_id", task.MessageID, "attempt", attempt)
	return true, nil
}

func (p *redisProducer) PublishEvent(ctx context.Context, kind string, payload []byte) error {
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.cfg.EventsStream,
		MaxLen: eventsStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"kind":    kind,
			"payload": string(payload),
		},
	}).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", kind, err)
	}
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
