package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/progress"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/rbac"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/syncx"
)

// GET /progress?user_id=...
// Students get their own records; admin may pass user_id.
func ListProgressHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if rbac.RoleFromContext(r.Context()) != "admin" || userID == "" {
			userID = rbac.SubjectFromContext(r.Context())
		}
		list, err := svc.ListProgress(r.Context(), userID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /lessons/{lessonID}/unlocked
func LessonUnlockedHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		userID := rbac.SubjectFromContext(r.Context())
		ok, err := svc.IsLessonUnlocked(r.Context(), userID, lessonID)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"unlocked": ok})
	}
}

// POST /books/{bookID}/initialize
// Idempotently unlocks the first lesson of the book for the subject.
func InitializeBookHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "bookID")
		userID := rbac.SubjectFromContext(r.Context())
		if err := svc.InitializeFirstLesson(r.Context(), userID, bookID); err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /admin/reset — wipes all local progress data.
func ResetHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ResetUserData(r.Context()); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /admin/sync/events?since=0&limit=100
func SyncEventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since := parseInt64Default(r.URL.Query().Get("since"), 0)
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		list, err := events.ListSince(r.Context(), since, limit)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseInt64Default(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}
