package remotesync

import (
	"context"
	"time"
)

const ActionSubmitTest = "submit_test"

// Attempt is the minimal view of a finalized attempt the remote mirror needs.
type Attempt struct {
	ID, UserID, LessonID string
	Score                float64
	PassingPercentage    float64
	Passed               bool
	CompletedAt          *time.Time
}

type UpdateData struct {
	TestScore         float64 `json:"test_score"`
	PassingPercentage float64 `json:"passing_percentage"`
}

// ProgressUpdate is the wire shape pushed to the hosted platform.
type ProgressUpdate struct {
	LessonID  string     `json:"lesson_id"`
	Action    string     `json:"action"`
	Data      UpdateData `json:"data"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Client talks to the remote mirror. See resthttp for the HTTP implementation.
type Client interface {
	UpdateLessonProgress(ctx context.Context, userID string, upd ProgressUpdate) error
}

// Store: implement this in your app, or use pkg/remotesync/sqlstore.
type Store interface {
	GetAttempt(ctx context.Context, id string) (Attempt, error)

	MarkSyncPending(ctx context.Context, attemptID string) error
	MarkSyncOK(ctx context.Context, attemptID string) error
	MarkSyncFailed(ctx context.Context, attemptID, lastErr string) error
}
