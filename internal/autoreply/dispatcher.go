package autoreply

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/internal/queue"
)

const (
	defaultQueueSize    = 256
	defaultWorkers      = 2
	defaultDedupeWindow = 24 * time.Hour
	seenSweepThreshold  = 4096
)

// Request identifies the message that may deserve an automatic reply.
type Request struct {
	ThreadID  int64
	MessageID int64
	SenderID  int64
	TraceID   string
}

// Enqueuer hands a request to the durable auto-reply stream.
type Enqueuer interface {
	EnqueueAutoReply(ctx context.Context, task queue.AutoReplyTask) (bool, error)
}

type Config struct {
	QueueSize    int
	Workers      int
	DedupeWindow time.Duration
}

type job struct {
	ctx context.Context
	req Request
}

// Dispatcher is a bounded background queue in front of the Enqueuer. Schedule never
// blocks the caller: when the buffer is full the request is dropped and logged.
type Dispatcher struct {
	enqueuer Enqueuer
	clock    clock.Clock
	window   time.Duration

	// sendMu guards jobs against a send racing Close.
	sendMu sync.RWMutex
	closed bool
	jobs   chan job

	seenMu sync.Mutex
	seen   map[int64]time.Time

	wg sync.WaitGroup
}

func NewDispatcher(enqueuer Enqueuer, cfg Config, clk clock.Clock) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = defaultDedupeWindow
	}
	if clk == nil {
		clk = clock.Real()
	}

	d := &Dispatcher{
		enqueuer: enqueuer,
		clock:    clk,
		window:   cfg.DedupeWindow,
		jobs:     make(chan job, cfg.QueueSize),
		seen:     make(map[int64]time.Time),
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.run()
	}

	return d
}

// Schedule queues req and reports whether it was accepted. Duplicates within the
// dedupe window, requests after Close and requests that find the buffer full are refused.
func (d *Dispatcher) Schedule(ctx context.Context, req Request) bool {
	if !d.markSeen(req.MessageID) {
		slog.DebugContext(ctx, "auto-reply already scheduled", "message_id", req.MessageID)
		return false
	}

	d.sendMu.RLock()
	defer d.sendMu.RUnlock()

	if d.closed {
		d.forget(req.MessageID)
		slog.WarnContext(ctx, "auto-reply dispatcher closed, dropping request", "message_id", req.MessageID)
		return false
	}

	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), req: req}:
		return true
	default:
		d.forget(req.MessageID)
		slog.WarnContext(ctx, "auto-reply queue full, dropping request",
			"message_id", req.MessageID,
			"thread_id", req.ThreadID,
			"capacity", cap(d.jobs))
		return false
	}
}

// Close stops accepting requests and waits for queued ones to be handed off.
func (d *Dispatcher) Close() {
	d.sendMu.Lock()
	if d.closed {
		d.sendMu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.sendMu.Unlock()

	d.wg.Wait()
}

// Pending returns the number of buffered requests.
func (d *Dispatcher) Pending() int {
	return len(d.jobs)
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	ctx := logger.WithLogFields(j.ctx, logger.LogFields{
		ThreadID:  &j.req.ThreadID,
		MessageID: &j.req.MessageID,
		Component: "courier.autoreply.dispatcher",
	})

	defer func() {
		if r := recover(); r != nil {
			d.forget(j.req.MessageID)
			slog.ErrorContext(ctx, "panic recovered in auto-reply dispatch", "panic", r)
		}
	}()

	task := queue.AutoReplyTask{
		ThreadID:  j.req.ThreadID,
		MessageID: j.req.MessageID,
		SenderID:  j.req.SenderID,
	}
	if j.req.TraceID != "" {
		task.TraceID = &j.req.TraceID
	}

	if _, err := d.enqueuer.EnqueueAutoReply(ctx, task); err != nil {
		d.forget(j.req.MessageID)
		slog.ErrorContext(ctx, "failed to enqueue auto-reply", "error", err)
	}
}

func (d *Dispatcher) markSeen(messageID int64) bool {
	d.seenMu.Lock()
	defer d.seenMu.Unlock()

	now := d.clock.Now()
	if at, ok := d.seen[messageID]; ok && now.Sub(at) < d.window {
		return false
	}

	if len(d.seen) >= seenSweepThreshold {
		for id, at := range d.seen {
			if now.Sub(at) >= d.window {
				delete(d.seen, id)
			}
		}
	}

	d.seen[messageID] = now
	return true
}

func (d *Dispatcher) forget(messageID int64) {
	d.seenMu.Lock()
	defer d.seenMu.Unlock()
	delete(d.seen, messageID)
}
