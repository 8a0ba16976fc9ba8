// Package queue implements a bounded-concurrency FIFO request queue that
// serializes long-running generative work against a shared inference backend.
// Callers submit work asynchronously and poll (or wait on a channel) for a
// terminal status; a background dispatcher admits queued requests into
// execution without ever exceeding the configured concurrency ceiling.
package queue
