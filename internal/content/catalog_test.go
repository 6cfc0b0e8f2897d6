package content_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/content"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/db"
)

// catalogs under test share one contract; run the suite against both.
func eachCatalog(t *testing.T, fn func(t *testing.T, c content.Catalog)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, content.NewInMemoryCatalog())
	})
	t.Run("sql", func(t *testing.T) {
		dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.TempDir()+"/catalog_test.db")
		require.NoError(t, err)
		t.Cleanup(func() { dbh.Close() })
		fn(t, content.NewSQLCatalog(dbh))
	})
}

func seedBook(t *testing.T, c content.Catalog) {
	t.Helper()
	ctx := context.Background()
	// Sparse order indexes on purpose.
	for _, l := range []content.Lesson{
		{ID: "intro", BookID: "b1", OrderIndex: 10, Title: "Salutations"},
		{ID: "cafe", BookID: "b1", OrderIndex: 35, Title: "Au café"},
		{ID: "gare", BookID: "b1", OrderIndex: 90, Title: "À la gare"},
		{ID: "solo", BookID: "b2", OrderIndex: 1},
	} {
		require.NoError(t, c.PutLesson(ctx, l))
	}
}

func TestCatalogFirstLesson(t *testing.T) {
	eachCatalog(t, func(t *testing.T, c content.Catalog) {
		seedBook(t, c)
		ctx := context.Background()

		l, err := c.FirstLesson(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "intro", l.ID)

		_, err = c.FirstLesson(ctx, "empty-book")
		assert.ErrorIs(t, err, content.ErrLessonNotFound)
	})
}

func TestCatalogNextLessonByOrderIndex(t *testing.T) {
	eachCatalog(t, func(t *testing.T, c content.Catalog) {
		seedBook(t, c)
		ctx := context.Background()

		next, err := c.NextLesson(ctx, "intro")
		require.NoError(t, err)
		assert.Equal(t, "cafe", next.ID, "next follows order_index, not insertion or id")

		next, err = c.NextLesson(ctx, "cafe")
		require.NoError(t, err)
		assert.Equal(t, "gare", next.ID)

		// Last lesson of the book.
		_, err = c.NextLesson(ctx, "gare")
		assert.ErrorIs(t, err, content.ErrLessonNotFound)

		// Sequencing never crosses books.
		_, err = c.NextLesson(ctx, "solo")
		assert.ErrorIs(t, err, content.ErrLessonNotFound)

		_, err = c.NextLesson(ctx, "nope")
		assert.ErrorIs(t, err, content.ErrLessonNotFound)
	})
}

func TestCatalogTestRoundtrip(t *testing.T) {
	eachCatalog(t, func(t *testing.T, c content.Catalog) {
		seedBook(t, c)
		ctx := context.Background()

		require.NoError(t, c.PutTest(ctx, content.Test{
			ID:                "t1",
			LessonID:          "intro",
			PassingPercentage: 70,
			Questions: []content.Question{
				{ID: "q1", Prompt: "Dites bonjour", CorrectAnswer: "Bonjour"},
				{ID: "q2", CorrectAnswer: "Merci", Points: 2},
			},
		}))

		got, err := c.GetTest(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "intro", got.LessonID)
		assert.Equal(t, 70.0, got.PassingPercentage)
		require.Len(t, got.Questions, 2)
		assert.Equal(t, 1.0, got.Questions[0].Points, "omitted points default to 1")
		assert.Equal(t, 2.0, got.Questions[1].Points)

		_, err = c.GetTest(ctx, "missing")
		assert.ErrorIs(t, err, content.ErrTestNotFound)
	})
}

func TestCatalogLessonUpsert(t *testing.T) {
	eachCatalog(t, func(t *testing.T, c content.Catalog) {
		seedBook(t, c)
		ctx := context.Background()

		require.NoError(t, c.PutLesson(ctx, content.Lesson{
			ID: "intro", BookID: "b1", OrderIndex: 10, Title: "Salutations (rev)",
		}))
		got, err := c.GetLesson(ctx, "intro")
		require.NoError(t, err)
		assert.Equal(t, "Salutations (rev)", got.Title)
	})
}

func TestSanitizedStripsAnswerKeys(t *testing.T) {
	full := content.Test{
		ID: "t1",
		Questions: []content.Question{
			{ID: "q1", Prompt: "Dites bonjour", CorrectAnswer: "Bonjour", Points: 1},
		},
	}
	safe := full.Sanitized()
	assert.Empty(t, safe.Questions[0].CorrectAnswer)
	assert.Equal(t, "Dites bonjour", safe.Questions[0].Prompt)
	// The original is untouched.
	assert.Equal(t, "Bonjour", full.Questions[0].CorrectAnswer)
}
