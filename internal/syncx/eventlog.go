package syncx

import (
	"context"
	"database/sql"
	"time"
)

const (
	TypeAttemptSubmitted = "AttemptSubmitted"
	TypeLessonUnlocked   = "LessonUnlocked"
)

type Event struct {
	Offset    int64  `json:"offset"`
	SiteID    string `json:"site_id"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

// EventRepo is the append-only outbound journal. Every local state change that
// the remote mirror may care about lands here, whether or not the immediate
// sync call succeeds.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	siteID := e.SiteID
	if siteID == "" {
		siteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		siteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// ListSince returns events with offset greater than the given one, oldest
// first, capped at limit.
func (r *EventRepo) ListSince(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", site_id, typ, key, data, created_at
		 FROM event_log WHERE "offset" > $1 ORDER BY "offset" ASC LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
