package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CypherNinjaa/french-learning-app-sub000/internal/content"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/progress"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/rbac"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/scoring"
)

// POST /attempts  { "lesson_id": "...", "test_id": "..." }
// The attempt belongs to the authenticated subject.
func StartTestHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LessonID string `json:"lesson_id"`
			TestID   string `json:"test_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.LessonID == "" || req.TestID == "" {
			http.Error(w, "lesson_id and test_id required", 400)
			return
		}
		userID := rbac.SubjectFromContext(r.Context())
		a, err := svc.StartTest(r.Context(), userID, req.LessonID, req.TestID)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// POST /attempts/{attemptID}/submit
// { "answers": [{"question_id":"...","user_answer":"..."}], "time_taken_minutes": 4.5 }
func SubmitTestHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		var req struct {
			Answers          []scoring.SubmittedAnswer `json:"answers"`
			TimeTakenMinutes *float64                  `json:"time_taken_minutes,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		a, err := svc.SubmitTest(r.Context(), id, req.Answers, req.TimeTakenMinutes)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, err := svc.GetAttempt(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		if !ownOrAdmin(r, a.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /attempts?test_id=...&user_id=...
// Students only ever see their own attempts; user_id is forced to the subject.
func ListAttemptsHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := r.URL.Query().Get("test_id")
		if testID == "" {
			http.Error(w, "test_id required", 400)
			return
		}
		userID := r.URL.Query().Get("user_id")
		if rbac.RoleFromContext(r.Context()) != "admin" || userID == "" {
			userID = rbac.SubjectFromContext(r.Context())
		}
		list, err := svc.ListAttempts(r.Context(), userID, testID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func ownOrAdmin(r *http.Request, userID string) bool {
	if rbac.RoleFromContext(r.Context()) == "admin" {
		return true
	}
	return rbac.SubjectFromContext(r.Context()) == userID
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, progress.ErrAttemptNotFound),
		errors.Is(err, content.ErrTestNotFound),
		errors.Is(err, content.ErrLessonNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
