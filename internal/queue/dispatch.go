package queue

import (
	"context"
	"time"
)

// dispatch is the long-lived admission loop. It blocks until a submission or
// a freed slot wakes it, then admits from the head of the backlog while
// capacity remains. Admission happens under the queue lock, so the FIFO order
// and the concurrency ceiling hold at every instant.
func (q *Queue) dispatch() {
	defer q.wg.Done()

	for {
		select {
		case <-q.quit:
			return
		case <-q.wake:
		}
		q.admit()
	}
}

// admit moves requests from the backlog into execution until the concurrency
// ceiling or the end of the backlog is reached.
func (q *Queue) admit() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.processing < q.config.MaxConcurrent && len(q.backlog) > 0 && !q.stopped {
		req := q.backlog[0]
		q.backlog = q.backlog[1:]

		now := time.Now()
		req.rec.Status = StatusProcessing
		req.rec.StartedAt = &now
		q.processing++

		q.logger.Info("processing request",
			"request_id", req.rec.ID,
			"queued_for", now.Sub(req.rec.SubmittedAt),
			"processing", q.processing)

		q.wg.Add(1)
		go q.execute(req)
	}
}

// execute runs exactly one request's executor outside the dispatcher's
// control path and records the outcome. The executor call itself runs
// lock-free so a slow backend never serializes unrelated dispatch decisions.
func (q *Queue) execute(req *request) {
	defer q.wg.Done()

	ctx := context.Background()
	if q.config.ExecTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.config.ExecTimeout)
		defer cancel()
	}

	result, err := req.exec.Execute(ctx, req.rec.Payload)

	q.mu.Lock()
	now := time.Now()
	req.rec.EndedAt = &now
	if err != nil {
		req.rec.Status = StatusError
		req.rec.Error = err.Error()
		q.logger.Error("request failed",
			"request_id", req.rec.ID,
			"error", err,
			"duration", now.Sub(*req.rec.StartedAt))
	} else {
		req.rec.Status = StatusCompleted
		req.rec.Result = result
		q.logger.Info("request completed",
			"request_id", req.rec.ID,
			"duration", now.Sub(*req.rec.StartedAt))
	}

	// A superseded request drains its slot but must not clobber the record
	// that replaced it.
	if cur, ok := q.live[req.rec.ID]; ok && cur == req {
		delete(q.live, req.rec.ID)
		q.finished[req.rec.ID] = req
	}
	q.processing--
	close(req.done)
	q.mu.Unlock()

	q.signal()
}
