// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/emasmetal/emas-go/internal/auth"
	"github.com/emasmetal/emas-go/internal/cache"
	"github.com/emasmetal/emas-go/internal/config"
	"github.com/emasmetal/emas-go/internal/handler/api"
	"github.com/emasmetal/emas-go/internal/logging"
	"github.com/emasmetal/emas-go/internal/mailer"
	"github.com/emasmetal/emas-go/internal/middleware"
	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/scheduler"
	"github.com/emasmetal/emas-go/internal/service"
	"github.com/emasmetal/emas-go/internal/storage"
	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: emas [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_JWT_SECRET        Token signing secret (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_DB_PATH           SQLite database path (default: ./data/emas.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_UPLOADS_DIR       Uploaded file directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAS_DO_SEED           Seed admin account and sample content (default: false)\n")
	}
	flag.Parse()

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("emas %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Mirror WARN and ERROR records into the event log now that the
	// database is migrated.
	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, store.SeedParams{
			AdminUsername: cfg.AdminUsername,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	allowedExtensions := cfg.AllowedExtensions
	if len(allowedExtensions) == 0 {
		allowedExtensions = model.DefaultAllowedExtensions
	}
	files, err := storage.NewFileStore(cfg.UploadsDir, allowedExtensions, cfg.MaxUploadBytes(), logger)
	if err != nil {
		return fmt.Errorf("initializing file storage: %w", err)
	}

	contentCache, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = contentCache.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("using redis content cache", "prefix", cfg.CachePrefix)
	}

	var mail *mailer.Mailer
	if cfg.MailConfigured() {
		mail = mailer.New(mailer.Options{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
			To:       cfg.MailTo,
		}, logger)
		slog.Info("contact mail notifications enabled", "host", cfg.MailHost, "to", cfg.MailTo)
	}

	maintenance := scheduler.New(db, files, logger)
	if err := maintenance.Start(); err != nil {
		return fmt.Errorf("starting maintenance scheduler: %w", err)
	}
	defer maintenance.Stop()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Hour)
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second

	authService := service.NewAuthService(db, issuer, logger)
	referenceService := service.NewReferenceService(db, files, contentCache, cacheTTL, logger)
	galleryService := service.NewGalleryService(db, files, contentCache, cacheTTL, logger)
	contactService := service.NewContactService(db, files, mail, logger)

	apiHandler := api.NewHandler(authService, referenceService, galleryService, contactService, cfg.MaxUploadBytes())
	healthHandler := api.NewHealthHandler(db, cfg.UploadsDir)
	eventsHandler := api.NewEventsHandler(db, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(60 * time.Second))

	// Abusable public endpoints get tighter budgets than the rest.
	loginLimiter := middleware.NewRateLimiter(1, 5)
	contactLimiter := middleware.NewRateLimiter(0.5, 3)

	requireAuth := middleware.RequireAuth(issuer, db)
	requireAdmin := middleware.RequireAdmin()

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.With(loginLimiter.Middleware()).Post("/auth/login", apiHandler.Login)
		r.With(loginLimiter.Middleware()).Post("/auth/register", apiHandler.Register)

		r.Get("/references", apiHandler.ListReferences)
		r.Get("/references/{id}", apiHandler.GetReference)
		r.Get("/gallery", apiHandler.ListGallery)
		r.Get("/gallery/{id}", apiHandler.GetGalleryItem)
		r.With(contactLimiter.Middleware()).Post("/contact", apiHandler.SubmitContact)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)

			r.Post("/references", apiHandler.CreateReference)
			r.Put("/references/{id}", apiHandler.UpdateReference)
			r.Delete("/references/{id}", apiHandler.DeleteReference)

			r.Post("/gallery", apiHandler.CreateGalleryItem)
			r.Put("/gallery/{id}", apiHandler.UpdateGalleryItem)
			r.Delete("/gallery/{id}", apiHandler.DeleteGalleryItem)

			r.Get("/contact/messages", apiHandler.ListContactMessages)
			r.Get("/contact/messages/unread-count", apiHandler.UnreadContactCount)
			r.Get("/contact/messages/{id}", apiHandler.GetContactMessage)
			r.Patch("/contact/messages/{id}/read", apiHandler.MarkContactMessageRead)
			r.Delete("/contact/messages/{id}", apiHandler.DeleteContactMessage)

			r.Get("/events", eventsHandler.ListEvents)
		})
	})

	r.Get("/uploads/*", serveUploads(files))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// serveUploads serves stored files. The reference is resolved through the
// file store so nothing outside the uploads root can be reached.
func serveUploads(files *storage.FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := files.Resolve(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=604800")
		http.ServeFile(w, r, path)
	}
}
