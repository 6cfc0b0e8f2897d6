package progress

import (
	"errors"
	"time"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/scoring"
)

var ErrAttemptNotFound = errors.New("attempt not found")

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// LessonProgress is one user's state for one lesson. Keyed by (user_id, lesson_id).
// BestScore and TestPassed only ever move forward; a failed retry after a pass
// changes neither.
type LessonProgress struct {
	UserID         string     `json:"user_id"`
	LessonID       string     `json:"lesson_id"`
	BookID         string     `json:"book_id"`
	Status         Status     `json:"status"`
	TestPassed     bool       `json:"test_passed"`
	BestScore      float64    `json:"best_score"`
	TotalAttempts  int        `json:"total_attempts"`
	UnlockedAt     *time.Time `json:"unlocked_at,omitempty"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
}

// Unlocked reports whether the lesson has been opened to the user. The
// unlocked_at timestamp is the canonical unlock signal.
func (p LessonProgress) Unlocked() bool { return p.UnlockedAt != nil }

// TestAttempt is one instance of a user taking a test. Created at start with
// placeholder scoring fields, finalized exactly once at submission, immutable
// afterward. Retaking creates a new attempt.
type TestAttempt struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"user_id"`
	LessonID         string                 `json:"lesson_id"`
	TestID           string                 `json:"test_id"`
	AttemptNumber    int                    `json:"attempt_number"` // 1-based per (user, test)
	Answers          []scoring.AnswerRecord `json:"answers"`
	Score            float64                `json:"score"`
	TotalQuestions   int                    `json:"total_questions"`
	CorrectAnswers   int                    `json:"correct_answers"`
	Passed           bool                   `json:"passed"`
	StartedAt        time.Time              `json:"started_at"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	TimeTakenMinutes *float64               `json:"time_taken_minutes,omitempty"`
}

// Finalized reports whether the attempt has been scored and sealed.
func (a TestAttempt) Finalized() bool { return a.CompletedAt != nil }
