package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLCatalog reads content from the lessons/tests tables. Questions live in a
// questions_json TEXT column on the test row.
type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

func (c *SQLCatalog) PutLesson(ctx context.Context, l Lesson) error {
	_, err := c.db.ExecContext(ctx, `INSERT INTO lessons (id,book_id,order_index,title)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET book_id=EXCLUDED.book_id, order_index=EXCLUDED.order_index, title=EXCLUDED.title`,
		l.ID, l.BookID, l.OrderIndex, l.Title)
	return err
}

func (c *SQLCatalog) PutTest(ctx context.Context, t Test) error {
	for i := range t.Questions {
		if t.Questions[i].Points == 0 {
			t.Questions[i].Points = 1
		}
	}
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `INSERT INTO tests (id,lesson_id,passing_percentage,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET lesson_id=EXCLUDED.lesson_id, passing_percentage=EXCLUDED.passing_percentage, questions_json=EXCLUDED.questions_json`,
		t.ID, t.LessonID, t.PassingPercentage, string(qj), time.Now().Unix())
	return err
}

func (c *SQLCatalog) GetTest(ctx context.Context, id string) (Test, error) {
	row := c.db.QueryRowContext(ctx, `SELECT id,lesson_id,passing_percentage,questions_json FROM tests WHERE id=$1`, id)
	var t Test
	var qjson string
	if err := row.Scan(&t.ID, &t.LessonID, &t.PassingPercentage, &qjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (c *SQLCatalog) GetLesson(ctx context.Context, id string) (Lesson, error) {
	row := c.db.QueryRowContext(ctx, `SELECT id,book_id,order_index,title FROM lessons WHERE id=$1`, id)
	return scanLesson(row)
}

func (c *SQLCatalog) FirstLesson(ctx context.Context, bookID string) (Lesson, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id,book_id,order_index,title FROM lessons WHERE book_id=$1 ORDER BY order_index ASC LIMIT 1`, bookID)
	return scanLesson(row)
}

func (c *SQLCatalog) NextLesson(ctx context.Context, lessonID string) (Lesson, error) {
	cur, err := c.GetLesson(ctx, lessonID)
	if err != nil {
		return Lesson{}, err
	}
	row := c.db.QueryRowContext(ctx,
		`SELECT id,book_id,order_index,title FROM lessons
		 WHERE book_id=$1 AND order_index > $2
		 ORDER BY order_index ASC LIMIT 1`,
		cur.BookID, cur.OrderIndex)
	return scanLesson(row)
}

func scanLesson(row *sql.Row) (Lesson, error) {
	var l Lesson
	if err := row.Scan(&l.ID, &l.BookID, &l.OrderIndex, &l.Title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, ErrLessonNotFound
		}
		return Lesson{}, err
	}
	return l, nil
}
