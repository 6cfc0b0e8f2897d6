package syncx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/db"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/syncx"
)

func newRepo(t *testing.T) *syncx.EventRepo {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.TempDir()+"/events_test.db")
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return syncx.NewEventRepo(dbh)
}

func TestEventLogAppendAssignsIncreasingOffsets(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, key := range []string{"a1", "a2", "a3"} {
		require.NoError(t, repo.Append(ctx, syncx.Event{
			Type:     syncx.TypeAttemptSubmitted,
			Key:      key,
			DataJSON: `{"attempt_id":"` + key + `"}`,
		}))
	}

	events, err := repo.ListSince(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Offset)
		assert.Equal(t, "local", e.SiteID, "site id defaults to local")
		assert.Equal(t, syncx.TypeAttemptSubmitted, e.Type)
	}
	assert.Equal(t, "a2", events[1].Key)
}

func TestEventLogListSinceCursor(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, syncx.Event{
			Type: syncx.TypeLessonUnlocked, Key: "k", DataJSON: "{}",
		}))
	}

	events, err := repo.ListSince(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[0].Offset)
	assert.Equal(t, int64(5), events[1].Offset)

	// Limit caps the page.
	events, err = repo.ListSince(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// Past the tail.
	events, err = repo.ListSince(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
