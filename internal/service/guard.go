package service

import (
	"context"
	"errors"

	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/store"
)

// Guard enforces that only thread participants act on or read a thread.
type Guard struct{}

// EnsureParticipant loads the caller's membership. With lock it takes the participant
// row lock, which only makes sense inside the caller's transaction.
func (Guard) EnsureParticipant(ctx context.Context, stores StoreProvider, threadID, userID int64, lock bool) (*model.Participant, error) {
	var (
		participant *model.Participant
		err         error
	)
	if lock {
		participant, err = stores.Participants().GetForUpdate(ctx, threadID, userID)
	} else {
		participant, err = stores.Participants().Get(ctx, threadID, userID)
	}

	if errors.Is(err, store.ErrNotFound) {
		return nil, forbidden("user %d is not a participant of thread %d", userID, threadID)
	}
	if err != nil {
		return nil, wrapErr("loading participant", err)
	}
	return participant, nil
}

// lockThread row-locks the thread or reports it missing.
func lockThread(ctx context.Context, stores StoreProvider, threadID int64) (*model.Thread, error) {
	thread, err := stores.Threads().GetForUpdate(ctx, threadID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: "thread", ID: threadID}
	}
	if err != nil {
		return nil, wrapErr("locking thread", err)
	}
	return thread, nil
}
