package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/adminauth"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/app"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/config"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/email"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/events"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/export"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/presence"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/revisions"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/search"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.RevisionsDir, 0o755); err != nil {
		log.Fatalf("failed to create revisions dir: %v", err)
	}

	dataStore := store.NewPostgresStore(db)
	revisionService := revisions.New(cfg.RevisionsDir)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)

	var tracker presence.Tracker
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for visitor presence")
		redisTracker, err := presence.NewRedisTracker(cfg.RedisURL, cfg.VisitorWindow)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisTracker.Close()
		tracker = redisTracker
	} else {
		log.Printf("Using in-memory visitor presence")
		tracker = presence.NewMemoryTracker(cfg.VisitorWindow)
	}

	var mailer *email.Service
	emailService := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if emailService.IsConfigured() {
		log.Printf("Submitter notifications enabled via %s", cfg.SMTPHost)
		mailer = emailService
	}

	service := app.NewService(cfg, app.Deps{
		Store:     dataStore,
		Events:    events.NewBuffer(cfg.EventBufferSize),
		Presence:  tracker,
		Auth:      adminauth.NewService(dataStore),
		Search:    searchService,
		Revisions: revisionService,
		Email:     mailer,
		Export:    export.NewService(dataStore),
	})
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: SSE streams stay open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("SilentStories API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
