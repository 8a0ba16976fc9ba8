// Package service contains the application services that sit between the
// HTTP handlers and the queue/generation boundaries.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ollapdf/ollapdf-api/internal/config"
	"github.com/ollapdf/ollapdf-api/internal/generation"
	"github.com/ollapdf/ollapdf-api/internal/queue"
)

// QueryService accepts user queries, assigns them IDs, and hands them to the
// request queue with an executor that invokes the generative backend. The
// queue handle is passed in explicitly; there is no ambient singleton.
type QueryService struct {
	queue     *queue.Queue
	answerer  generation.Answerer
	retention config.RetentionConfig
	logger    *slog.Logger
}

// NewQueryService creates a QueryService.
func NewQueryService(
	q *queue.Queue,
	answerer generation.Answerer,
	retention config.RetentionConfig,
	logger *slog.Logger,
) *QueryService {
	return &QueryService{
		queue:     q,
		answerer:  answerer,
		retention: retention,
		logger:    logger,
	}
}

// SubmitQuery enqueues a query for asynchronous answering and returns its
// request ID immediately. The caller polls GetQuery (or waits on
// WaitForQuery) until a terminal status appears.
func (s *QueryService) SubmitQuery(ctx context.Context, text string) (string, error) {
	id := uuid.New().String()

	exec := queue.ExecutorFunc(func(ctx context.Context, payload any) (any, error) {
		query, _ := payload.(string)
		return s.answerer.GenerateAnswer(ctx, query)
	})

	if _, err := s.queue.Submit(id, text, exec); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "query submitted",
		"request_id", id,
		"query_length", len(text))
	return id, nil
}

// GetQuery returns a snapshot of the request's record.
// Returns queue.ErrNotFound for unknown IDs.
func (s *QueryService) GetQuery(id string) (queue.Record, error) {
	return s.queue.Status(id)
}

// GetPosition reports the request's place in line: 0 while processing, the
// number of requests ahead of it while queued, -1 for unknown or finished.
func (s *QueryService) GetPosition(id string) int {
	return s.queue.Position(id)
}

// Stats returns a point-in-time snapshot of queue occupancy.
func (s *QueryService) Stats() queue.Stats {
	return s.queue.Stats()
}

// WaitForQuery blocks until the request reaches a terminal status or the
// context is cancelled, then returns the final record. It exists so callers
// are not forced to busy-poll; terminal-state semantics are identical to
// GetQuery.
func (s *QueryService) WaitForQuery(ctx context.Context, id string) (queue.Record, error) {
	done, err := s.queue.Done(id)
	if err != nil {
		return queue.Record{}, err
	}

	select {
	case <-done:
		return s.queue.Status(id)
	case <-ctx.Done():
		return queue.Record{}, ctx.Err()
	}
}

// RunRetention periodically evicts finished records older than the
// configured TTL, bounding the finished set over the process lifetime. It
// blocks until the context is cancelled; run it in its own goroutine. A zero
// TTL disables eviction and returns immediately.
func (s *QueryService) RunRetention(ctx context.Context) {
	if s.retention.TTL <= 0 {
		return
	}

	interval := s.retention.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.queue.EvictFinished(s.retention.TTL); evicted > 0 {
				s.logger.Info("evicted finished queries",
					"evicted", evicted,
					"ttl", s.retention.TTL)
			}
		}
	}
}
