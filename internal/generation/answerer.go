package generation

import "context"

// Answer is the opaque output of the generative backend, transported by the
// queue and surfaced to the polling caller once a request completes.
type Answer struct {
	// Text is the generated answer
	Text string

	// Model is the name of the model that produced it
	Model string
}

// Answerer defines the interface for answering a query with a generative
// backend. This is the work-function boundary: implementations may block for
// the full duration of external inference and are expected to carry their own
// timeout. The queue makes no contract about execution time or idempotence.
type Answerer interface {
	// GenerateAnswer produces an answer for the given query.
	//
	// Returns an Answer or an error (see errors.go for sentinel types).
	// Errors are terminal: the caller records them verbatim and never
	// retries.
	GenerateAnswer(ctx context.Context, query string) (*Answer, error)
}
