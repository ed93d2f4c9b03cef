package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/notify"
)

// AutoReplyScheduler accepts auto-reply requests without blocking.
type AutoReplyScheduler interface {
	Schedule(ctx context.Context, req autoreply.Request) bool
}

type queuedNotification struct {
	notification notify.Notification
	opts         notify.Options
}

// postCommit lists the side effects of a committed write.
type postCommit struct {
	threadID      int64
	inboxUsers    []int64
	messages      []model.Message
	autoReply     *autoreply.Request
	notifications []queuedNotification
}

// Fanout runs post-commit side effects off the request path. Every step is isolated:
// failures are logged and counted, never returned.
type Fanout struct {
	cache     cache.Cache
	events    events.Publisher
	notifier  notify.Notifier
	autoReply AutoReplyScheduler
	metrics   *Metrics
	spawn     func(func())
}

func NewFanout(c cache.Cache, publisher events.Publisher, notifier notify.Notifier, autoReply AutoReplyScheduler, metrics *Metrics) *Fanout {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Fanout{
		cache:     c,
		events:    publisher,
		notifier:  notifier,
		autoReply: autoReply,
		metrics:   metrics,
		spawn:     func(f func()) { go f() },
	}
}

// WithSpawn replaces the goroutine launcher. Tests pass a synchronous one.
func (f *Fanout) WithSpawn(spawn func(func())) *Fanout {
	f.spawn = spawn
	return f
}

func (f *Fanout) dispatch(ctx context.Context, work postCommit) {
	ctx = context.WithoutCancel(ctx)
	f.spawn(func() {
		f.step(ctx, "cache", func() error { return f.invalidate(ctx, work.threadID, work.inboxUsers) })

		for _, msg := range work.messages {
			f.step(ctx, "event", func() error {
				if f.events != nil {
					f.events.Publish(ctx, events.MessageAppended{ThreadID: work.threadID, Message: msg})
				}
				return nil
			})
		}

		for _, qn := range work.notifications {
			f.step(ctx, "notification", func() error {
				if f.notifier == nil {
					return nil
				}
				return f.notifier.QueueNotification(ctx, qn.notification, qn.opts)
			})
		}

		if work.autoReply != nil && f.autoReply != nil {
			req := *work.autoReply
			f.step(ctx, "autoreply", func() error {
				f.autoReply.Schedule(ctx, req)
				return nil
			})
		}
	})
}

func (f *Fanout) invalidate(ctx context.Context, threadID int64, users []int64) error {
	if f.cache == nil {
		return nil
	}
	var firstErr error
	if threadID != 0 {
		if _, err := f.cache.FlushPrefix(ctx, cache.ThreadPrefix(threadID)); err != nil {
			firstErr = err
		}
	}
	for _, userID := range users {
		if _, err := f.cache.FlushPrefix(ctx, cache.InboxPrefix(userID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Fanout) step(ctx context.Context, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			f.metrics.fanoutFailures.WithLabelValues(name).Inc()
			slog.ErrorContext(ctx, "post-commit step panicked", "step", name, "panic", fmt.Sprint(r))
		}
	}()
	if err := fn(); err != nil {
		f.metrics.fanoutFailures.WithLabelValues(name).Inc()
		slog.WarnContext(ctx, "post-commit step failed", "step", name, "error", err)
	}
}

func participantIDs(participants []model.Participant) []int64 {
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids
}
