package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/scoring"
)

// SQLStore persists progress in the lesson_progress and test_attempts tables.
// Works against sqlite (offline/on-device) and postgres (online); both accept
// the $n placeholder style.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// GetLessonProgress never fails: query and row errors are logged and the rows
// read so far are returned. The caller treats missing data as "no progress".
func (s *SQLStore) GetLessonProgress(ctx context.Context, userID string) ([]LessonProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id,lesson_id,book_id,status,test_passed,best_score,total_attempts,unlocked_at,last_accessed_at
		 FROM lesson_progress WHERE user_id=$1 ORDER BY lesson_id`, userID)
	if err != nil {
		log.Printf("progress: read lesson_progress for %s: %v", userID, err)
		return []LessonProgress{}, nil
	}
	defer rows.Close()

	out := []LessonProgress{}
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			log.Printf("progress: scan lesson_progress row: %v", err)
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		log.Printf("progress: iterate lesson_progress: %v", err)
	}
	return out, nil
}

func (s *SQLStore) GetLessonProgressFor(ctx context.Context, userID, lessonID string) (LessonProgress, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id,lesson_id,book_id,status,test_passed,best_score,total_attempts,unlocked_at,last_accessed_at
		 FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID)
	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LessonProgress{}, false, nil
		}
		return LessonProgress{}, false, err
	}
	return rec, true, nil
}

func (s *SQLStore) SaveLessonProgress(ctx context.Context, rec LessonProgress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (user_id,lesson_id,book_id,status,test_passed,best_score,total_attempts,unlocked_at,last_accessed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id,lesson_id) DO UPDATE SET
		   book_id=EXCLUDED.book_id, status=EXCLUDED.status, test_passed=EXCLUDED.test_passed,
		   best_score=EXCLUDED.best_score, total_attempts=EXCLUDED.total_attempts,
		   unlocked_at=EXCLUDED.unlocked_at, last_accessed_at=EXCLUDED.last_accessed_at`,
		rec.UserID, rec.LessonID, rec.BookID, string(rec.Status), rec.TestPassed,
		rec.BestScore, rec.TotalAttempts, unixOrNil(rec.UnlockedAt), rec.LastAccessedAt.Unix())
	return err
}

func (s *SQLStore) GetTestAttempt(ctx context.Context, id string) (TestAttempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,lesson_id,test_id,attempt_number,answers_json,score,total_questions,correct_answers,passed,started_at,completed_at,time_taken_minutes
		 FROM test_attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestAttempt{}, ErrAttemptNotFound
		}
		return TestAttempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveTestAttempt(ctx context.Context, a TestAttempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO test_attempts (id,user_id,lesson_id,test_id,attempt_number,answers_json,score,total_questions,correct_answers,passed,started_at,completed_at,time_taken_minutes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (id) DO UPDATE SET
		   answers_json=EXCLUDED.answers_json, score=EXCLUDED.score,
		   total_questions=EXCLUDED.total_questions, correct_answers=EXCLUDED.correct_answers,
		   passed=EXCLUDED.passed, completed_at=EXCLUDED.completed_at,
		   time_taken_minutes=EXCLUDED.time_taken_minutes`,
		a.ID, a.UserID, a.LessonID, a.TestID, a.AttemptNumber, string(aj),
		a.Score, a.TotalQuestions, a.CorrectAnswers, a.Passed,
		a.StartedAt.Unix(), unixOrNil(a.CompletedAt), floatOrNil(a.TimeTakenMinutes))
	return err
}

func (s *SQLStore) GetUserTestAttempts(ctx context.Context, userID, testID string) ([]TestAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,lesson_id,test_id,attempt_number,answers_json,score,total_questions,correct_answers,passed,started_at,completed_at,time_taken_minutes
		 FROM test_attempts WHERE user_id=$1 AND test_id=$2 ORDER BY attempt_number ASC`, userID, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TestAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			log.Printf("progress: scan attempt row: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ClearAllData(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM test_attempts`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM lesson_progress`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (LessonProgress, error) {
	var rec LessonProgress
	var status string
	var unlocked sql.NullInt64
	var lastAccessed int64
	if err := row.Scan(&rec.UserID, &rec.LessonID, &rec.BookID, &status, &rec.TestPassed,
		&rec.BestScore, &rec.TotalAttempts, &unlocked, &lastAccessed); err != nil {
		return LessonProgress{}, err
	}
	rec.Status = Status(status)
	rec.UnlockedAt = timeOrNil(unlocked)
	rec.LastAccessedAt = time.Unix(lastAccessed, 0).UTC()
	return rec, nil
}

func scanAttempt(row rowScanner) (TestAttempt, error) {
	var a TestAttempt
	var ajson string
	var started int64
	var completed sql.NullInt64
	var taken sql.NullFloat64
	if err := row.Scan(&a.ID, &a.UserID, &a.LessonID, &a.TestID, &a.AttemptNumber, &ajson,
		&a.Score, &a.TotalQuestions, &a.CorrectAnswers, &a.Passed, &started, &completed, &taken); err != nil {
		return TestAttempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		// Corrupt answers are treated as absent, not fatal (parity with the
		// in-memory behavior for unreadable local data).
		a.Answers = []scoring.AnswerRecord{}
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	a.CompletedAt = timeOrNil(completed)
	if taken.Valid {
		v := taken.Float64
		a.TimeTakenMinutes = &v
	}
	return a, nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
