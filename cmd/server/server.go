package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ollapdf/ollapdf-api/internal/api"
	"github.com/ollapdf/ollapdf-api/internal/api/middleware"
	"github.com/ollapdf/ollapdf-api/internal/config"
	"github.com/ollapdf/ollapdf-api/internal/generation"
	"github.com/ollapdf/ollapdf-api/internal/platform/gemini"
	"github.com/ollapdf/ollapdf-api/internal/platform/ollama"
)

// shutdownTimeout bounds how long the HTTP server waits for open
// connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

// newAnswerer constructs the generative backend selected by configuration.
func newAnswerer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Answerer, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewAnswerer(logger, cfg)
	case "gemini":
		return gemini.NewAnswerer(ctx, logger, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// newRouter assembles the chi router with the standard middleware chain and
// the query queue routes.
func newRouter(handler *api.QueryHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/queries", handler.SubmitQuery)
		r.Get("/queries/{id}", handler.GetQuery)
		r.Get("/queries/{id}/position", handler.GetPosition)
		r.Get("/queue/stats", handler.GetStats)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// startHTTPServer serves until the context is cancelled, then shuts down
// gracefully. Returns any listen error other than a normal close.
func startHTTPServer(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger, router http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
