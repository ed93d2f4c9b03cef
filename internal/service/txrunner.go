package service

import (
	"context"

	"basegraph.app/courier/core/db"
	"basegraph.app/courier/core/db/sqlc"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/store"
)

// StoreProvider exposes the stores a transactional operation may touch.
type StoreProvider interface {
	Threads() store.ThreadStore
	Participants() store.ParticipantStore
	Messages() store.MessageStore
	Attachments() store.AttachmentStore
	SupportCases() store.SupportCaseStore
	RetentionAudits() store.RetentionAuditStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		stores := store.NewStores(q)
		return fn(stores)
	})
}

type retentionTxRunner struct {
	tx TxRunner
}

// RetentionTxRunner exposes a TxRunner to the retention purger, which sees a narrower
// store set.
func RetentionTxRunner(tx TxRunner) retention.TxRunner {
	return retentionTxRunner{tx: tx}
}

func (r retentionTxRunner) WithTx(ctx context.Context, fn func(stores retention.StoreProvider) error) error {
	return r.tx.WithTx(ctx, func(stores StoreProvider) error {
		return fn(stores)
	})
}
