package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/CypherNinjaa/french-learning-app-sub000/internal/api/http"
	auth "github.com/CypherNinjaa/french-learning-app-sub000/internal/auth/middleware"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/config"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/content"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/db"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/progress"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/rbac"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/scoring"
	"github.com/CypherNinjaa/french-learning-app-sub000/internal/syncx"
	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync"
	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync/resthttp"
	syncstore "github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync/sqlstore"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := progress.NewSQLStore(dbh)
	catalog := content.NewSQLCatalog(dbh)
	events := syncx.NewEventRepo(dbh)

	var engineOpts []scoring.Option
	if cfg.NormalizeAnswers {
		engineOpts = append(engineOpts, scoring.WithNormalizedComparison(true))
	}
	engine := scoring.NewEngine(engineOpts...)

	svcOpts := []progress.ServiceOption{progress.WithEventSink(events)}
	if cfg.EnableRemoteSync && cfg.SyncBaseURL != "" {
		client := resthttp.New(resthttp.Config{
			BaseURL:      cfg.SyncBaseURL,
			TokenURL:     cfg.SyncTokenURL,
			ClientID:     cfg.SyncClientID,
			ClientSecret: cfg.SyncClientSecret,
			Timeout:      15 * time.Second,
		})
		svcOpts = append(svcOpts, progress.WithSyncer(remotesync.New(syncstore.New(dbh), client, nil)))
	}
	svc := progress.NewService(store, catalog, engine, svcOpts...)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Student flow
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}", api.GetTestHandler(catalog))
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.StartTestHandler(svc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitTestHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(svc))

		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/progress", api.ListProgressHandler(svc))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/lessons/{lessonID}/unlocked", api.LessonUnlockedHandler(svc))
		pr.With(rbac.Require("book:init")).
			Post("/books/{bookID}/initialize", api.InitializeBookHandler(svc))

		// Content upserts (admin)
		pr.With(rbac.Require("content:upsert")).
			Post("/lessons", api.UpsertLessonHandler(catalog))
		pr.With(rbac.Require("content:upsert")).
			Post("/tests", api.UpsertTestHandler(catalog))

		// Admin
		pr.With(rbac.Require("progress:reset")).
			Post("/admin/reset", api.ResetHandler(svc))
		pr.With(rbac.Require("sync:events")).
			Get("/admin/sync/events", api.SyncEventsHandler(events))
	})

	log.Printf("progressd listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
