package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync"
)

// Store adapts the app's test_attempts table to remotesync.Store. The pass
// threshold is joined in from the owning test so the mirror payload carries it.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) GetAttempt(ctx context.Context, id string) (remotesync.Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id, a.user_id, a.lesson_id, a.score, a.passed, a.completed_at,
		        COALESCE(t.passing_percentage, 0)
		 FROM test_attempts a
		 LEFT JOIN tests t ON t.id = a.test_id
		 WHERE a.id = $1`, id)

	var at remotesync.Attempt
	var completed sql.NullInt64
	if err := row.Scan(&at.ID, &at.UserID, &at.LessonID, &at.Score, &at.Passed, &completed, &at.PassingPercentage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return remotesync.Attempt{}, errors.New("attempt not found")
		}
		return remotesync.Attempt{}, err
	}
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		at.CompletedAt = &t
	}
	return at, nil
}

func (s *Store) MarkSyncPending(ctx context.Context, attemptID string) error {
	return s.mark(ctx, attemptID, "pending", "")
}

func (s *Store) MarkSyncOK(ctx context.Context, attemptID string) error {
	return s.mark(ctx, attemptID, "ok", "")
}

func (s *Store) MarkSyncFailed(ctx context.Context, attemptID, lastErr string) error {
	return s.mark(ctx, attemptID, "failed", lastErr)
}

func (s *Store) mark(ctx context.Context, attemptID, status, lastErr string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE test_attempts SET sync_status=$1, sync_error=$2 WHERE id=$3`,
		status, lastErr, attemptID)
	return err
}
