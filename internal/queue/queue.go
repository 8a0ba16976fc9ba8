package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Common errors returned by the Queue
var (
	ErrClosed   = errors.New("request queue is closed")
	ErrNotFound = errors.New("request not found")
)

// Status represents the current state of a request
type Status string

// Possible request status values
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether the status is final. A request never leaves a
// terminal status once it reaches one.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Executor is the opaque work function a request carries. The queue treats it
// as a black box: it makes no assumptions about execution time, thread
// affinity, or idempotence, and never retries it.
type Executor interface {
	// Execute runs the work for a single request. The returned value is
	// stored verbatim on the finished record; a non-nil error marks the
	// request as failed with the error text attached.
	Execute(ctx context.Context, payload any) (any, error)
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
type ExecutorFunc func(ctx context.Context, payload any) (any, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, payload any) (any, error) {
	return f(ctx, payload)
}

// Record is the lifecycle record of a single request. Lookups return a
// point-in-time copy; the queue keeps the mutable original.
type Record struct {
	// ID is the caller-supplied unique identifier
	ID string

	// Payload is the opaque input handed to the executor
	Payload any

	// Status is the current lifecycle state
	Status Status

	// SubmittedAt is when the request entered the queue
	SubmittedAt time.Time

	// StartedAt is when execution began; nil while still queued
	StartedAt *time.Time

	// EndedAt is when execution finished; nil until terminal
	EndedAt *time.Time

	// Result is the executor's output, set only when Status is completed
	Result any

	// Error is the executor's failure message, set only when Status is error
	Error string
}

// request pairs a record with its executor and completion signal.
type request struct {
	rec  Record
	exec Executor
	done chan struct{}
}

// Config holds configuration for the queue
type Config struct {
	// MaxConcurrent caps how many requests may be processing at once.
	// If zero or negative, defaults to 1 (full serialization, the right
	// choice for a single GPU-bound backend).
	MaxConcurrent int

	// ExecTimeout, when positive, bounds each executor call with a
	// context deadline; expiry is recorded as an ordinary error outcome.
	// Zero disables the deadline and leaves timeouts to the executor.
	ExecTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 1,
	}
}

// Queue owns the FIFO backlog, the live and finished record maps, and the
// processing counter. All four are guarded by a single mutex, held only for
// bookkeeping and never across an executor call.
type Queue struct {
	mu       sync.Mutex
	backlog  []*request
	live     map[string]*request
	finished map[string]*request

	processing int
	config     Config
	logger     *slog.Logger

	// wake nudges the dispatcher after a submission or a freed slot
	wake chan struct{}

	// quit signals the dispatcher to exit
	quit    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// New creates a queue and starts its dispatcher. Callers own the handle and
// must call Stop to drain in-flight work on shutdown.
func New(config Config, logger *slog.Logger) *Queue {
	if config.MaxConcurrent <= 0 {
		if config.MaxConcurrent < 0 {
			logger.Warn("invalid max concurrent specified, using default",
				"specified", config.MaxConcurrent,
				"default", 1)
		}
		config.MaxConcurrent = 1
	}

	q := &Queue{
		live:     make(map[string]*request),
		finished: make(map[string]*request),
		config:   config,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}

	q.wg.Add(1)
	go q.dispatch()

	return q
}

// Submit enqueues a request and returns immediately once bookkeeping
// completes; it never blocks on execution. Submitting an ID that is still
// tracked supersedes the previous request: the old record is dropped and the
// new one takes its place at the tail of the backlog.
func (q *Queue) Submit(id string, payload any, exec Executor) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return "", ErrClosed
	}

	if prev, ok := q.live[id]; ok {
		q.logger.Warn("duplicate request id, superseding previous request",
			"request_id", id,
			"previous_status", prev.rec.Status)
		if prev.rec.Status == StatusQueued {
			q.removeFromBacklog(prev)
			close(prev.done)
		}
	}

	req := &request{
		rec: Record{
			ID:          id,
			Payload:     payload,
			Status:      StatusQueued,
			SubmittedAt: time.Now(),
		},
		exec: exec,
		done: make(chan struct{}),
	}
	q.live[id] = req
	q.backlog = append(q.backlog, req)

	q.logger.Debug("request submitted",
		"request_id", id,
		"backlog_len", len(q.backlog),
		"processing", q.processing)

	q.signal()
	return id, nil
}

// Status returns a snapshot of the request's record, checking the finished
// set before the live set. Returns ErrNotFound for unknown IDs.
func (q *Queue) Status(id string) (Record, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if req, ok := q.finished[id]; ok {
		return req.rec, nil
	}
	if req, ok := q.live[id]; ok {
		return req.rec, nil
	}
	return Record{}, ErrNotFound
}

// Position reports how many requests are ahead of the given one: 0 if it is
// currently processing, its backlog index plus the processing count if
// queued, and -1 if the ID is unknown or already finished.
func (q *Queue) Position(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	req, ok := q.live[id]
	if !ok {
		return -1
	}
	if req.rec.Status == StatusProcessing {
		return 0
	}
	for i, queued := range q.backlog {
		if queued == req {
			return i + q.processing
		}
	}
	return -1
}

// Stats is a point-in-time snapshot of queue occupancy. Consistent only
// within a single lock acquisition.
type Stats struct {
	// Queued is the number of requests waiting in the backlog
	Queued int

	// Processing is the number of requests currently executing
	Processing int

	// Active counts all live requests (queued plus processing)
	Active int

	// MaxConcurrent is the configured concurrency ceiling
	MaxConcurrent int
}

// Stats returns a snapshot of the queue's current occupancy.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Queued:        len(q.backlog),
		Processing:    q.processing,
		Active:        len(q.live),
		MaxConcurrent: q.config.MaxConcurrent,
	}
}

// Done returns a channel that is closed when the request reaches a terminal
// status, so callers can wait instead of polling. The channel of an already
// finished request is closed. Returns ErrNotFound for unknown IDs.
func (q *Queue) Done(id string) (<-chan struct{}, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if req, ok := q.finished[id]; ok {
		return req.done, nil
	}
	if req, ok := q.live[id]; ok {
		return req.done, nil
	}
	return nil, ErrNotFound
}

// EvictFinished removes finished records whose execution ended more than
// olderThan ago and returns how many were evicted. A zero or negative
// olderThan evicts every finished record. Retention policy is deliberately
// owned by the caller; the queue itself never garbage-collects.
func (q *Queue) EvictFinished(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	q.mu.Lock()
	defer q.mu.Unlock()

	evicted := 0
	for id, req := range q.finished {
		if req.rec.EndedAt != nil && req.rec.EndedAt.Before(cutoff) {
			delete(q.finished, id)
			evicted++
		}
	}
	if evicted > 0 {
		q.logger.Debug("evicted finished requests",
			"evicted", evicted,
			"remaining", len(q.finished))
	}
	return evicted
}

// Stop halts admission and waits for the dispatcher and all in-flight
// executions to finish. Requests still queued remain queued and are never
// started; Submit returns ErrClosed afterwards.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()

	close(q.quit)
	q.wg.Wait()
	q.logger.Info("request queue stopped")
}

// signal nudges the dispatcher without blocking. The channel holds one
// pending wake-up; coalescing further signals is fine because each admission
// pass drains the backlog as far as capacity allows.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// removeFromBacklog drops a superseded queued request. Caller must hold q.mu.
func (q *Queue) removeFromBacklog(req *request) {
	for i, queued := range q.backlog {
		if queued == req {
			q.backlog = append(q.backlog[:i], q.backlog[i+1:]...)
			return
		}
	}
}
