package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/content"
)

// GET /tests/{testID} — student-safe view, answer keys stripped.
func GetTestHandler(catalog content.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		t, err := catalog.GetTest(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(t.Sanitized())
	}
}

// POST /lessons — admin upsert of a lesson definition.
func UpsertLessonHandler(catalog content.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l content.Lesson
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if l.ID == "" || l.BookID == "" {
			http.Error(w, "id and book_id required", 400)
			return
		}
		if err := catalog.PutLesson(r.Context(), l); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(l)
	}
}

// POST /tests — admin upsert of a test with its question set.
func UpsertTestHandler(catalog content.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t content.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if t.ID == "" || t.LessonID == "" {
			http.Error(w, "id and lesson_id required", 400)
			return
		}
		if err := catalog.PutTest(r.Context(), t); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": t.ID})
	}
}
