package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/db"
	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync/sqlstore"
)

func seedDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.TempDir()+"/sync_test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	mustExec(t, dbh, `INSERT INTO lessons (id,book_id,order_index) VALUES ('l1','b1',1)`)
	mustExec(t, dbh, `INSERT INTO tests (id,lesson_id,passing_percentage,questions_json,created_at)
		VALUES ('t1','l1',70,'[]',0)`)
	mustExec(t, dbh, `INSERT INTO test_attempts
		(id,user_id,lesson_id,test_id,attempt_number,answers_json,score,passed,started_at,completed_at)
		VALUES ('done','u1','l1','t1',1,'[]',85,1,100,200)`)
	mustExec(t, dbh, `INSERT INTO test_attempts
		(id,user_id,lesson_id,test_id,attempt_number,answers_json,started_at)
		VALUES ('open','u1','l1','t1',2,'[]',300)`)
	// An attempt whose test row is gone; threshold falls back to 0.
	mustExec(t, dbh, `INSERT INTO test_attempts
		(id,user_id,lesson_id,test_id,attempt_number,answers_json,score,started_at,completed_at)
		VALUES ('orphan','u1','l1','gone',1,'[]',40,400,500)`)
	return dbh
}

func mustExec(t *testing.T, dbh *sql.DB, q string) {
	t.Helper()
	if _, err := dbh.Exec(q); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

func TestGetAttemptJoinsPassThreshold(t *testing.T) {
	store := sqlstore.New(seedDB(t))
	ctx := context.Background()

	at, err := store.GetAttempt(ctx, "done")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if at.UserID != "u1" || at.LessonID != "l1" {
		t.Fatalf("unexpected attempt: %+v", at)
	}
	if at.Score != 85 || !at.Passed {
		t.Fatalf("score/passed = %v/%v", at.Score, at.Passed)
	}
	if at.PassingPercentage != 70 {
		t.Fatalf("PassingPercentage = %v, want 70 from the tests table", at.PassingPercentage)
	}
	if at.CompletedAt == nil || at.CompletedAt.Unix() != 200 {
		t.Fatalf("CompletedAt = %v", at.CompletedAt)
	}
}

func TestGetAttemptInFlightHasNilCompletedAt(t *testing.T) {
	store := sqlstore.New(seedDB(t))
	at, err := store.GetAttempt(context.Background(), "open")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if at.CompletedAt != nil {
		t.Fatalf("CompletedAt = %v, want nil", at.CompletedAt)
	}
}

func TestGetAttemptMissingTestRow(t *testing.T) {
	store := sqlstore.New(seedDB(t))
	at, err := store.GetAttempt(context.Background(), "orphan")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if at.PassingPercentage != 0 {
		t.Fatalf("PassingPercentage = %v, want 0 fallback", at.PassingPercentage)
	}
}

func TestGetAttemptUnknown(t *testing.T) {
	store := sqlstore.New(seedDB(t))
	if _, err := store.GetAttempt(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown attempt")
	}
}

func TestSyncMarks(t *testing.T) {
	dbh := seedDB(t)
	store := sqlstore.New(dbh)
	ctx := context.Background()

	readMark := func() (status, lastErr string) {
		t.Helper()
		row := dbh.QueryRow(`SELECT sync_status, sync_error FROM test_attempts WHERE id='done'`)
		if err := row.Scan(&status, &lastErr); err != nil {
			t.Fatalf("scan mark: %v", err)
		}
		return
	}

	if err := store.MarkSyncPending(ctx, "done"); err != nil {
		t.Fatalf("MarkSyncPending: %v", err)
	}
	if s, _ := readMark(); s != "pending" {
		t.Fatalf("status = %q", s)
	}

	if err := store.MarkSyncFailed(ctx, "done", "timeout"); err != nil {
		t.Fatalf("MarkSyncFailed: %v", err)
	}
	if s, e := readMark(); s != "failed" || e != "timeout" {
		t.Fatalf("mark = %q/%q", s, e)
	}

	if err := store.MarkSyncOK(ctx, "done"); err != nil {
		t.Fatalf("MarkSyncOK: %v", err)
	}
	if s, e := readMark(); s != "ok" || e != "" {
		t.Fatalf("mark = %q/%q, want ok with cleared error", s, e)
	}
}
