package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khamboran/internal/aggregate"
	"khamboran/internal/config"
	"khamboran/internal/handlers"
	"khamboran/internal/security"
	"khamboran/internal/service"
	"khamboran/internal/store"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Primary backend (supports sqlite, postgres, mysql)
	primary, err := openPrimary(cfg)
	if err != nil {
		log.Fatalf("Failed to open primary store: %v", err)
	}
	defer primary.Close()

	log.Printf("Primary store connected (type: %s)", cfg.DatabaseType)

	// Local fallback cache, always sqlite
	local, err := store.OpenSQLBackend("local", store.NewSQLiteDialect(), store.DialectConfig{Path: cfg.CachePath})
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	defer local.Close()

	dual := store.NewDualStore(primary, local)
	sessions := store.NewSessionStore(dual)
	profiles := store.NewProfileStore(dual)

	var feed *store.BulkFeed
	if cfg.BulkFeedURL != "" {
		feed = store.NewBulkFeed(cfg.BulkFeedURL)
		log.Printf("Bulk feed enabled: %s", cfg.BulkFeedURL)
	}

	// Live-session registry, and the dashboard aggregator whose edits and
	// deletes must reach sessions that are still in memory
	registry := handlers.NewSessionRegistry()
	aggregator := aggregate.New(sessions, profiles, feed, aggregate.Hooks{
		LearnerDeleted: registry.Terminate,
		LearnerEdited:  registry.UpdateProfile,
	})

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.FromEmail, cfg.FromName, cfg.AppBaseURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
	}

	tokens := security.NewTokenIssuer(cfg.DashboardSecret, cfg.DashboardDuration)
	csrf := security.NewCSRF(cfg.DashboardSecret)

	var oauthConfig *oauth2.Config
	if cfg.GoogleClientID != "" {
		oauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(tokens, csrf)
	authHandler := handlers.NewAuthHandler(tokens, csrf, cfg.DashboardDuration, oauthConfig)
	gameHandler := handlers.NewGameHandler(registry, sessions, profiles, aggregator)
	teacherHandler := handlers.NewTeacherHandler(aggregator, emailService)

	// Setup routes
	mux := http.NewServeMux()

	// Learner routes
	mux.HandleFunc("POST /api/game/start", gameHandler.Start)
	mux.HandleFunc("GET /api/game/state", gameHandler.State)
	mux.HandleFunc("POST /api/game/step", gameHandler.Step)
	mux.HandleFunc("POST /api/game/back", gameHandler.Back)
	mux.HandleFunc("POST /api/game/jump", gameHandler.Jump)
	mux.HandleFunc("POST /api/game/word", gameHandler.Word)
	mux.HandleFunc("POST /api/game/match", gameHandler.Match)
	mux.HandleFunc("POST /api/game/writing", gameHandler.Writing)
	mux.HandleFunc("POST /api/game/quiz", gameHandler.Quiz)
	mux.HandleFunc("POST /api/game/quiz/retry", gameHandler.QuizRetry)
	mux.HandleFunc("POST /api/game/finish", gameHandler.Finish)
	mux.HandleFunc("POST /api/game/reset", gameHandler.Reset)
	mux.HandleFunc("GET /api/content/words", gameHandler.Words)
	mux.HandleFunc("GET /api/content/questions", gameHandler.Questions)
	mux.HandleFunc("GET /api/game/last-student", gameHandler.LastStudent)

	// Teacher auth
	mux.HandleFunc("POST /api/teacher/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/teacher/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/google/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.OAuthCallback)

	// Teacher dashboard
	mux.HandleFunc("GET /api/teacher/dashboard", middleware.RequireTeacher(teacherHandler.Dashboard))
	mux.HandleFunc("GET /api/teacher/students/{id}/history", middleware.RequireTeacher(teacherHandler.History))
	mux.HandleFunc("PUT /api/teacher/students/{id}", middleware.RequireTeacher(middleware.CSRFProtect(teacherHandler.EditStudent)))
	mux.HandleFunc("DELETE /api/teacher/students/{id}", middleware.RequireTeacher(middleware.CSRFProtect(teacherHandler.DeleteStudent)))
	mux.HandleFunc("GET /api/teacher/ranking", middleware.RequireTeacher(teacherHandler.Ranking))
	mux.HandleFunc("POST /api/teacher/report/email", middleware.RequireTeacher(middleware.CSRFProtect(teacherHandler.EmailReport)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}

	// Drain in-flight session saves before the stores close
	registry.Flush()

	log.Println("Server stopped")
}

// openPrimary picks the dialect for the configured database type.
func openPrimary(cfg *config.Config) (*store.SQLBackend, error) {
	switch cfg.DatabaseType {
	case "sqlite", "":
		return store.OpenSQLBackend("primary", store.NewSQLiteDialect(), store.DialectConfig{Path: cfg.DatabasePath})
	case "postgres":
		return store.OpenSQLBackend("primary", store.NewPostgresDialect(), store.DialectConfig{URL: cfg.DatabaseURL})
	case "mysql":
		return store.OpenSQLBackend("primary", store.NewMySQLDialect(), store.DialectConfig{URL: cfg.DatabaseURL})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}
