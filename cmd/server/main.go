// Nova Bridge - local ritual shim for the NeuroNudge extension
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/neuronudge/nova-bridge/internal/api"
	"github.com/neuronudge/nova-bridge/internal/automation"
	"github.com/neuronudge/nova-bridge/internal/config"
	"github.com/neuronudge/nova-bridge/internal/metrics"
	"github.com/neuronudge/nova-bridge/internal/middleware"
	"github.com/neuronudge/nova-bridge/internal/nova"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting Nova bridge", "addr", cfg.Addr(), "nova_endpoint", cfg.Nova.Endpoint)

	// Initialize dependencies.
	m := metrics.New()

	var backend automation.Backend
	if cfg.Nova.Endpoint != "" {
		backend = nova.NewClient(nova.Config{
			Endpoint:   cfg.Nova.Endpoint,
			Headless:   cfg.Nova.Headless,
			ActTimeout: cfg.Nova.ActTimeout,
		}, &http.Client{}, logger)
		slog.Info("Nova Act runtime configured", "endpoint", cfg.Nova.Endpoint, "workers", cfg.Nova.Workers)
	} else {
		slog.Info("Nova Act runtime not configured (NOVA_ACT_ENDPOINT not set), rituals will run in dry-run mode")
	}

	dispatcher := automation.NewDispatcher(backend,
		automation.WithWorkers(cfg.Nova.Workers),
		automation.WithMetrics(m),
		automation.WithLogger(logger))

	if !dispatcher.Available() {
		slog.Warn(automation.CredentialEnv + " not set or runtime missing; rituals will run in dry-run mode")
	}

	// Initialize handlers.
	ritualHandler := api.NewRitualHandler(dispatcher, api.RitualOptions{
		BreathingURL:   cfg.Prompt.BreathingURL,
		BreakStartPage: cfg.Prompt.BreakStartPage,
	})
	healthHandler := api.NewHealthHandler(dispatcher)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	healthHandler.RegisterHealth(r)
	ritualHandler.RegisterRoutes(r)
	r.Handle("/metrics", m.Handler())

	// No WriteTimeout: a real Nova invocation has no upper bound unless
	// NOVA_ACT_TIMEOUT is set.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
