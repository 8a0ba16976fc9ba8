// Package main implements the entry point for the OllaPDF query API server,
// which queues document questions against a shared GPU-bound generative
// backend and lets clients poll for answers.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ollapdf/ollapdf-api/internal/api"
	"github.com/ollapdf/ollapdf-api/internal/config"
	"github.com/ollapdf/ollapdf-api/internal/platform/logger"
	"github.com/ollapdf/ollapdf-api/internal/queue"
	"github.com/ollapdf/ollapdf-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run loads configuration, wires the queue, backend, and HTTP layers
// together, and serves until a shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.ModelName,
		"max_concurrent", cfg.Queue.MaxConcurrent)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	answerer, err := newAnswerer(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", cfg.LLM.Provider, err)
	}

	q := queue.New(queue.Config{
		MaxConcurrent: cfg.Queue.MaxConcurrent,
		ExecTimeout:   cfg.Queue.ExecTimeout,
	}, appLogger)

	querySvc := service.NewQueryService(q, answerer, cfg.Retention, appLogger)
	go querySvc.RunRetention(ctx)

	router := newRouter(api.NewQueryHandler(querySvc))

	if err := startHTTPServer(ctx, cfg.Server, appLogger, router); err != nil {
		return err
	}

	// Drain in-flight inference before exiting.
	q.Stop()
	return nil
}
