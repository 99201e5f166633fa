// Package main is the entrypoint for the CropCare API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cropcareai/cropcare/internal/api"
	"github.com/cropcareai/cropcare/internal/api/handler"
	mw "github.com/cropcareai/cropcare/internal/api/middleware"
	"github.com/cropcareai/cropcare/internal/api/response"
	"github.com/cropcareai/cropcare/internal/cache"
	"github.com/cropcareai/cropcare/internal/classifier"
	"github.com/cropcareai/cropcare/internal/config"
	"github.com/cropcareai/cropcare/internal/credentials"
	"github.com/cropcareai/cropcare/internal/diagnosis"
	"github.com/cropcareai/cropcare/internal/ingest"
	"github.com/cropcareai/cropcare/internal/knowledge"
	"github.com/cropcareai/cropcare/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "classifier_backend", cfg.Classifier.Backend, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Build the diagnosis pipeline: knowledge table, upload service,
	// classifier backend. The embedding backend encodes its label prompts
	// here, so an unreachable encoder fails the boot.
	table := knowledge.Default()

	ingestSvc, err := ingest.NewService(cfg.Uploads)
	if err != nil {
		return fmt.Errorf("create ingest service: %w", err)
	}

	clf, err := classifier.New(ctx, cfg.Classifier, table)
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}
	slog.Info("classifier initialized", "backend", clf.Name())

	// 6. Create store and services
	pgStore := store.NewPostgresStore(pool)
	diagSvc := diagnosis.NewService(clf, ingestSvc, table, pgStore, redisCache, cfg.Classifier.ClassifyTimeout)
	credSvc := credentials.NewService(pgStore)

	// 7. Build router with dependencies
	rateLimit := mw.NewRateLimit(redisCache, 30)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:       healthHandler(pgStore, redisCache),
		PredictHandler:      handler.NewPredictHandler(diagSvc, cfg.Uploads.MaxUploadSize),
		PastResultsHandler:  handler.NewPastResultsHandler(diagSvc),
		ClearHistoryHandler: handler.NewClearHistoryHandler(diagSvc),
		DebugCountsHandler:  handler.NewDebugCountsHandler(diagSvc),
		RegisterHandler:     handler.NewRegisterHandler(credSvc),
		LoginHandler:        handler.NewLoginHandler(credSvc),

		UploadsDir: ingestSvc.Dir(),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
