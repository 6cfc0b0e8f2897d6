package resthttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync"
	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync/resthttp"
)

func TestUpdateLessonProgress(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody remotesync.ProgressUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := resthttp.New(resthttp.Config{BaseURL: srv.URL + "/", Timeout: time.Second})
	upd := remotesync.ProgressUpdate{
		LessonID: "l1",
		Action:   remotesync.ActionSubmitTest,
		Data:     remotesync.UpdateData{TestScore: 85, PassingPercentage: 70},
	}
	if err := c.UpdateLessonProgress(context.Background(), "u 1", upd); err != nil {
		t.Fatalf("UpdateLessonProgress: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("method = %s", gotMethod)
	}
	if gotPath != "/users/u%201/lesson-progress" && gotPath != "/users/u 1/lesson-progress" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody.LessonID != "l1" || gotBody.Data.TestScore != 85 {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestUpdateLessonProgressNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := resthttp.New(resthttp.Config{BaseURL: srv.URL})
	err := c.UpdateLessonProgress(context.Background(), "u1", remotesync.ProgressUpdate{})
	if err == nil {
		t.Fatal("expected error on 503")
	}
}
