package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/content"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/scoring"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/syncx"
)

type Clock func() time.Time

// EventSink receives outbound journal entries. Appends are best-effort.
type EventSink interface {
	Append(ctx context.Context, e syncx.Event) error
}

// AttemptSyncer pushes a finalized attempt to the remote mirror. Failures are
// the syncer's problem; the local result stands either way.
type AttemptSyncer interface {
	SyncAttempt(ctx context.Context, attemptID string) error
}

// Service orchestrates the attempt lifecycle and the lesson-unlock policy.
// Within one submission the steps run in a fixed order: score, persist the
// finalized attempt, update lesson progress, maybe unlock, maybe sync.
type Service struct {
	store   Store
	catalog content.Catalog
	engine  *scoring.Engine
	events  EventSink
	syncer  AttemptSyncer
	now     Clock
}

type ServiceOption func(*Service)

func WithClock(now Clock) ServiceOption         { return func(s *Service) { s.now = now } }
func WithEventSink(es EventSink) ServiceOption  { return func(s *Service) { s.events = es } }
func WithSyncer(sy AttemptSyncer) ServiceOption { return func(s *Service) { s.syncer = sy } }

func NewService(store Store, catalog content.Catalog, engine *scoring.Engine, opts ...ServiceOption) *Service {
	s := &Service{store: store, catalog: catalog, engine: engine, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartTest creates and persists a fresh attempt. The attempt number is one
// more than the count of this user's prior attempts at this test. No
// LessonProgress side effect happens here.
func (s *Service) StartTest(ctx context.Context, userID, lessonID, testID string) (TestAttempt, error) {
	if _, err := s.catalog.GetTest(ctx, testID); err != nil {
		return TestAttempt{}, err
	}
	prior, err := s.store.GetUserTestAttempts(ctx, userID, testID)
	if err != nil {
		return TestAttempt{}, fmt.Errorf("count prior attempts: %w", err)
	}
	a := TestAttempt{
		ID:            uuid.NewString(),
		UserID:        userID,
		LessonID:      lessonID,
		TestID:        testID,
		AttemptNumber: len(prior) + 1,
		StartedAt:     s.now().UTC(),
	}
	if err := s.store.SaveTestAttempt(ctx, a); err != nil {
		return TestAttempt{}, err
	}
	return a, nil
}

// SubmitTest scores and finalizes an attempt, updates the lesson's progress
// record, and on a pass unlocks the next lesson. Submitting an attempt that is
// already finalized is a no-op returning the sealed attempt. A missing attempt
// or test is fatal to the operation; everything after finalization is
// best-effort.
func (s *Service) SubmitTest(ctx context.Context, attemptID string, submitted []scoring.SubmittedAnswer, timeTakenMinutes *float64) (TestAttempt, error) {
	a, err := s.store.GetTestAttempt(ctx, attemptID)
	if err != nil {
		return TestAttempt{}, err
	}
	if a.Finalized() {
		return a, nil
	}

	test, err := s.catalog.GetTest(ctx, a.TestID)
	if err != nil {
		return TestAttempt{}, err
	}

	res := s.engine.Score(test.Questions, submitted)
	passed := scoring.Passed(res.ScorePercent, test.PassingPercentage)
	now := s.now().UTC()

	a.Answers = res.Answers
	a.Score = res.ScorePercent
	a.TotalQuestions = res.TotalQuestions
	a.CorrectAnswers = res.CorrectCount
	a.Passed = passed
	a.CompletedAt = &now
	a.TimeTakenMinutes = timeTakenMinutes
	if err := s.store.SaveTestAttempt(ctx, a); err != nil {
		return TestAttempt{}, fmt.Errorf("finalize attempt: %w", err)
	}

	if err := s.updateLessonProgress(ctx, a, passed, now); err != nil {
		log.Printf("progress: update lesson progress %s/%s: %v", a.UserID, a.LessonID, err)
	}

	if passed {
		if err := s.UnlockNextLesson(ctx, a.UserID, a.LessonID); err != nil {
			log.Printf("progress: unlock next after %s: %v", a.LessonID, err)
		}
	}

	s.appendEvent(ctx, syncx.TypeAttemptSubmitted, a.ID, map[string]any{
		"attempt_id": a.ID,
		"user_id":    a.UserID,
		"lesson_id":  a.LessonID,
		"score":      a.Score,
		"passed":     a.Passed,
	})

	if s.syncer != nil {
		if err := s.syncer.SyncAttempt(ctx, a.ID); err != nil {
			log.Printf("progress: remote sync of attempt %s: %v", a.ID, err)
		}
	}
	return a, nil
}

func (s *Service) updateLessonProgress(ctx context.Context, a TestAttempt, passed bool, now time.Time) error {
	rec, ok, err := s.store.GetLessonProgressFor(ctx, a.UserID, a.LessonID)
	if err != nil {
		return err
	}
	if !ok {
		rec = LessonProgress{
			UserID:   a.UserID,
			LessonID: a.LessonID,
			Status:   StatusNotStarted,
			// Taking a test on this lesson means the user reached it.
			UnlockedAt: &now,
		}
		if l, lerr := s.catalog.GetLesson(ctx, a.LessonID); lerr == nil {
			rec.BookID = l.BookID
		}
	}
	if a.Score > rec.BestScore {
		rec.BestScore = a.Score
	}
	rec.TotalAttempts++
	rec.TestPassed = rec.TestPassed || passed // a later failure never revokes a pass
	if rec.TestPassed {
		rec.Status = StatusCompleted
	} else {
		rec.Status = StatusInProgress
	}
	rec.LastAccessedAt = now
	return s.store.SaveLessonProgress(ctx, rec)
}

// UnlockNextLesson creates a progress record with unlocked_at set for the
// lesson following the given one within its book. Idempotent: an existing
// record means the lesson is already unlocked and nothing changes. The last
// lesson of a book has no successor, which is not an error.
func (s *Service) UnlockNextLesson(ctx context.Context, userID, currentLessonID string) error {
	next, err := s.catalog.NextLesson(ctx, currentLessonID)
	if err != nil {
		if errors.Is(err, content.ErrLessonNotFound) {
			return nil
		}
		return err
	}
	if _, ok, err := s.store.GetLessonProgressFor(ctx, userID, next.ID); err != nil {
		return err
	} else if ok {
		return nil
	}
	now := s.now().UTC()
	rec := LessonProgress{
		UserID:         userID,
		LessonID:       next.ID,
		BookID:         next.BookID,
		Status:         StatusNotStarted,
		UnlockedAt:     &now,
		LastAccessedAt: now,
	}
	if err := s.store.SaveLessonProgress(ctx, rec); err != nil {
		return err
	}
	s.appendEvent(ctx, syncx.TypeLessonUnlocked, userID+"|"+next.ID, map[string]any{
		"user_id":   userID,
		"lesson_id": next.ID,
		"book_id":   next.BookID,
	})
	return nil
}

// InitializeFirstLesson makes sure the first lesson of a book is unlocked for
// the user. Called defensively before a user's first attempt in a book.
func (s *Service) InitializeFirstLesson(ctx context.Context, userID, bookID string) error {
	first, err := s.catalog.FirstLesson(ctx, bookID)
	if err != nil {
		return err
	}
	rec, ok, err := s.store.GetLessonProgressFor(ctx, userID, first.ID)
	if err != nil {
		return err
	}
	if ok && rec.Unlocked() {
		return nil
	}
	now := s.now().UTC()
	if !ok {
		rec = LessonProgress{
			UserID:         userID,
			LessonID:       first.ID,
			BookID:         bookID,
			Status:         StatusNotStarted,
			LastAccessedAt: now,
		}
	}
	rec.UnlockedAt = &now
	return s.store.SaveLessonProgress(ctx, rec)
}

// IsLessonUnlocked reports whether the user may access the lesson. The first
// lesson of its book is always unlocked, even for a fresh user; otherwise the
// progress record's unlocked_at decides.
func (s *Service) IsLessonUnlocked(ctx context.Context, userID, lessonID string) (bool, error) {
	lesson, err := s.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return false, err
	}
	first, err := s.catalog.FirstLesson(ctx, lesson.BookID)
	if err != nil {
		return false, err
	}
	if first.ID == lessonID {
		return true, nil
	}
	rec, ok, err := s.store.GetLessonProgressFor(ctx, userID, lessonID)
	if err != nil {
		return false, err
	}
	return ok && rec.Unlocked(), nil
}

// GetAttempt fetches one attempt by id.
func (s *Service) GetAttempt(ctx context.Context, id string) (TestAttempt, error) {
	return s.store.GetTestAttempt(ctx, id)
}

// ListProgress returns every progress record for the user.
func (s *Service) ListProgress(ctx context.Context, userID string) ([]LessonProgress, error) {
	return s.store.GetLessonProgress(ctx, userID)
}

// ListAttempts returns the user's attempts at one test, oldest first.
func (s *Service) ListAttempts(ctx context.Context, userID, testID string) ([]TestAttempt, error) {
	return s.store.GetUserTestAttempts(ctx, userID, testID)
}

// ResetUserData wipes all locally persisted progress. Debug/reset only.
func (s *Service) ResetUserData(ctx context.Context) error {
	return s.store.ClearAllData(ctx)
}

func (s *Service) appendEvent(ctx context.Context, typ, key string, data map[string]any) {
	if s.events == nil {
		return
	}
	buf, err := json.Marshal(data)
	if err != nil {
		log.Printf("progress: marshal %s event: %v", typ, err)
		return
	}
	if err := s.events.Append(ctx, syncx.Event{Type: typ, Key: key, DataJSON: string(buf)}); err != nil {
		log.Printf("progress: append %s event: %v", typ, err)
	}
}
