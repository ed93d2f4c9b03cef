package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/id"
	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/store"
)

const (
	DefaultBatchSize  = 500
	DefaultMaxThreads = 100

	day = 24 * time.Hour
)

// Mirrors service.StoreProvider - defined here to avoid import cycles.
type StoreProvider interface {
	Threads() store.ThreadStore
	Participants() store.ParticipantStore
	Messages() store.MessageStore
	Attachments() store.AttachmentStore
	RetentionAudits() store.RetentionAuditStore
}

// Mirrors service.TxRunner - defined here to avoid import cycles.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type PurgeOptions struct {
	BatchSize  int
	MaxThreads int
	RunID      string
}

type ThreadPurgeDetail struct {
	ThreadID        int64     `json:"threadId"`
	RetentionPolicy string    `json:"retentionPolicy"`
	RetentionDays   int       `json:"retentionDays"`
	Cutoff          time.Time `json:"cutoff"`
	DeletedCount    int       `json:"deletedCount"`
	IsOverride      bool      `json:"isOverride"`
	AuditID         *int64    `json:"auditId,omitempty"`
	Error           string    `json:"error,omitempty"`
}

type PurgeResult struct {
	RunID            string              `json:"runId"`
	TotalDeleted     int                 `json:"totalDeleted"`
	ThreadsProcessed int                 `json:"threadsProcessed"`
	Details          []ThreadPurgeDetail `json:"details"`
}

type PurgerConfig struct {
	// AuditRetention is how long an audit row stays live before it is archived.
	AuditRetention time.Duration
}

type Purger struct {
	tx       TxRunner
	policies *Policies
	events   events.Publisher
	clock    clock.Clock
	newID    id.Generator
	metrics  *Metrics
	cfg      PurgerConfig
	cache    cache.Cache
}

func NewPurger(tx TxRunner, policies *Policies, publisher events.Publisher, clk clock.Clock, newID id.Generator, metrics *Metrics, cfg PurgerConfig) *Purger {
	if policies == nil {
		policies = DefaultPolicies()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if newID == nil {
		newID = id.Default
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if cfg.AuditRetention <= 0 {
		cfg.AuditRetention = 365 * day
	}
	return &Purger{
		tx:       tx,
		policies: policies,
		events:   publisher,
		clock:    clk,
		newID:    newID,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// WithCache makes the purger drop cached thread and inbox views of threads it purged.
func (p *Purger) WithCache(c cache.Cache) *Purger {
	p.cache = c
	return p
}

// PurgeExpiredMessages hard-deletes messages older than each thread's retention window.
// Threads are visited least-recently-checked first. A failing thread is recorded in its
// detail and does not stop the others.
func (p *Purger) PurgeExpiredMessages(ctx context.Context, opts PurgeOptions) (*PurgeResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxThreads <= 0 {
		opts.MaxThreads = DefaultMaxThreads
	}

	result := &PurgeResult{RunID: opts.RunID, Details: []ThreadPurgeDetail{}}

	var threads []model.Thread
	err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		threads, err = sp.Threads().ListForRetention(ctx, opts.MaxThreads)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("listing threads for retention: %w", err)
	}

	slog.InfoContext(ctx, "retention purge started",
		"thread_count", len(threads),
		"batch_size", opts.BatchSize)

	for _, thread := range threads {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		detail := p.purgeThread(ctx, thread, opts)
		result.ThreadsProcessed++
		result.TotalDeleted += detail.DeletedCount
		result.Details = append(result.Details, detail)
	}

	p.metrics.messagesDeleted.Add(float64(result.TotalDeleted))

	slog.InfoContext(ctx, "retention purge finished",
		"threads_processed", result.ThreadsProcessed,
		"total_deleted", result.TotalDeleted)

	return result, nil
}

func (p *Purger) purgeThread(ctx context.Context, thread model.Thread, opts PurgeOptions) ThreadPurgeDetail {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: &thread.ID})

	now := p.clock.Now()
	cutoff := now.Add(-time.Duration(thread.RetentionDays) * day)
	detail := ThreadPurgeDetail{
		ThreadID:        thread.ID,
		RetentionPolicy: thread.RetentionPolicy,
		RetentionDays:   thread.RetentionDays,
		Cutoff:          cutoff,
		IsOverride:      p.policies.IsOverride(thread),
	}

	var deletedIDs []int64
	for {
		batch, err := p.purgeBatch(ctx, thread.ID, cutoff, opts.BatchSize, now)
		if err != nil {
			detail.Error = err.Error()
			slog.ErrorContext(ctx, "retention purge failed for thread",
				"error", err,
				"deleted_so_far", len(deletedIDs))
			break
		}
		deletedIDs = append(deletedIDs, batch...)
		if len(batch) < opts.BatchSize {
			break
		}
	}
	detail.DeletedCount = len(deletedIDs)
	if detail.DeletedCount > 0 {
		p.invalidate(ctx, thread.ID)
	}

	if err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		return sp.Threads().MarkRetentionChecked(ctx, thread.ID, now)
	}); err != nil {
		slog.WarnContext(ctx, "failed to mark thread retention checked", "error", err)
	}

	if detail.DeletedCount == 0 && !detail.IsOverride {
		return detail
	}

	audit, err := p.recordAudit(ctx, thread, detail, opts.RunID, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to record retention audit", "error", err)
		if detail.Error == "" {
			detail.Error = err.Error()
		}
	} else {
		detail.AuditID = &audit.ID
	}

	if p.events != nil {
		if len(deletedIDs) > 0 {
			p.events.Publish(ctx, events.MessagesPurged{
				ThreadID:   thread.ID,
				DeletedIDs: deletedIDs,
				Cutoff:     cutoff,
			})
		}
		if audit != nil {
			p.events.Publish(ctx, events.RetentionAuditRecorded{
				RunID:            audit.RunID,
				AuditID:          audit.ID,
				ThreadID:         audit.ThreadID,
				DeletedCount:     audit.DeletedCount,
				ParticipantCount: audit.ParticipantCount,
				RetentionPolicy:  audit.RetentionPolicy,
				RetentionDays:    audit.RetentionDays,
				IsOverride:       audit.IsOverride,
				Cutoff:           audit.CutoffAt,
			})
		}
	}

	if detail.DeletedCount > 0 {
		slog.InfoContext(ctx, "purged expired messages",
			"deleted", detail.DeletedCount,
			"cutoff", cutoff,
			"retention_days", thread.RetentionDays)
	}

	return detail
}

func (p *Purger) invalidate(ctx context.Context, threadID int64) {
	if p.cache == nil {
		return
	}
	if _, err := p.cache.FlushPrefix(ctx, cache.ThreadPrefix(threadID)); err != nil {
		slog.WarnContext(ctx, "failed to flush purged thread cache", "error", err)
	}

	var participants []model.Participant
	if err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		participants, err = sp.Participants().ListByThread(ctx, threadID)
		return err
	}); err != nil {
		slog.WarnContext(ctx, "failed to load participants for cache flush", "error", err)
		return
	}
	for _, pt := range participants {
		if _, err := p.cache.FlushPrefix(ctx, cache.InboxPrefix(pt.UserID)); err != nil {
			slog.WarnContext(ctx, "failed to flush inbox cache", "error", err, "user_id", pt.UserID)
		}
	}
}

// purgeBatch deletes one batch inside a transaction that holds the thread row lock,
// then recomputes the thread summary from the newest surviving message.
func (p *Purger) purgeBatch(ctx context.Context, threadID int64, cutoff time.Time, batchSize int, now time.Time) ([]int64, error) {
	var ids []int64
	err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		if _, err := sp.Threads().GetForUpdate(ctx, threadID); err != nil {
			return fmt.Errorf("locking thread: %w", err)
		}

		expired, err := sp.Messages().ListExpiredIDs(ctx, threadID, cutoff, batchSize)
		if err != nil {
			return fmt.Errorf("listing expired messages: %w", err)
		}
		if len(expired) == 0 {
			return nil
		}

		if _, err := sp.Attachments().DeleteByMessages(ctx, expired); err != nil {
			return fmt.Errorf("deleting attachments: %w", err)
		}
		if _, err := sp.Messages().DeleteReadReceipts(ctx, expired); err != nil {
			return fmt.Errorf("deleting read receipts: %w", err)
		}
		if _, err := sp.Messages().DeleteByIDs(ctx, expired); err != nil {
			return fmt.Errorf("deleting messages: %w", err)
		}

		if err := p.recomputeSummary(ctx, sp, threadID, now); err != nil {
			return err
		}

		ids = expired
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (p *Purger) recomputeSummary(ctx context.Context, sp StoreProvider, threadID int64, now time.Time) error {
	latest, err := sp.Messages().GetLatest(ctx, threadID)
	if errors.Is(err, store.ErrNotFound) {
		// Nothing left: drop the preview, keep last_message_at monotonic.
		if err := sp.Threads().SetSummary(ctx, threadID, nil, nil, now); err != nil {
			return fmt.Errorf("clearing thread summary: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading latest message: %w", err)
	}

	attachments, err := sp.Attachments().ListByMessages(ctx, []int64{latest.ID})
	if err != nil {
		return fmt.Errorf("loading latest message attachments: %w", err)
	}
	latest.Attachments = attachments[latest.ID]

	if err := sp.Threads().SetSummary(ctx, threadID, &latest.CreatedAt, latest.Preview(), now); err != nil {
		return fmt.Errorf("updating thread summary: %w", err)
	}
	return nil
}

func (p *Purger) recordAudit(ctx context.Context, thread model.Thread, detail ThreadPurgeDetail, runID string, now time.Time) (*model.RetentionAudit, error) {
	audit := &model.RetentionAudit{
		ID:              p.newID(),
		RunID:           runID,
		ThreadID:        thread.ID,
		RetentionPolicy: thread.RetentionPolicy,
		RetentionDays:   thread.RetentionDays,
		DeletedCount:    detail.DeletedCount,
		CutoffAt:        detail.Cutoff,
		IsOverride:      detail.IsOverride,
		RetainedUntil:   now.Add(p.cfg.AuditRetention),
		CreatedAt:       now,
	}

	err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		count, err := sp.Participants().CountByThread(ctx, thread.ID)
		if err != nil {
			return fmt.Errorf("counting participants: %w", err)
		}
		audit.ParticipantCount = count
		return sp.RetentionAudits().Create(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

// ArchiveExpiredAudits marks live audit rows past their retainedUntil as archived.
func (p *Purger) ArchiveExpiredAudits(ctx context.Context, now time.Time) (int64, error) {
	var archived int64
	err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		archived, err = sp.RetentionAudits().ArchiveExpired(ctx, now)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("archiving retention audits: %w", err)
	}
	return archived, nil
}

// DeleteArchivedAudits removes audit rows archived more than grace ago.
func (p *Purger) DeleteArchivedAudits(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	var deleted int64
	err := p.tx.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		deleted, err = sp.RetentionAudits().DeleteArchivedBefore(ctx, now.Add(-grace))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("deleting archived retention audits: %w", err)
	}
	return deleted, nil
}
