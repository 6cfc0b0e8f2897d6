package remotesync

import (
	"context"
	"errors"
	"time"
)

type Clock func() time.Time

// Syncer pushes finalized attempts to the remote mirror, recording the sync
// state next to the attempt. One shot per call, no retry loop: a failure
// leaves the attempt marked failed until the next sync opportunity.
type Syncer struct {
	Store  Store
	Client Client
	Now    Clock
}

func New(store Store, client Client, now Clock) *Syncer {
	if now == nil {
		now = time.Now
	}
	return &Syncer{Store: store, Client: client, Now: now}
}

func (s *Syncer) SyncAttempt(ctx context.Context, attemptID string) error {
	at, err := s.Store.GetAttempt(ctx, attemptID)
	if err != nil {
		return err
	}
	if at.CompletedAt == nil {
		return errors.New("attempt not finalized")
	}
	_ = s.Store.MarkSyncPending(ctx, at.ID)

	upd := ProgressUpdate{
		LessonID: at.LessonID,
		Action:   ActionSubmitTest,
		Data: UpdateData{
			TestScore:         at.Score,
			PassingPercentage: at.PassingPercentage,
		},
		UpdatedAt: s.Now(),
	}
	if err := s.Client.UpdateLessonProgress(ctx, at.UserID, upd); err != nil {
		_ = s.Store.MarkSyncFailed(ctx, at.ID, err.Error())
		return err
	}
	return s.Store.MarkSyncOK(ctx, at.ID)
}
