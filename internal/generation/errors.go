package generation

import "errors"

// Sentinel errors for the generation boundary. Platform packages wrap these
// with %w so callers can classify failures with errors.Is.
var (
	// ErrInvalidConfig indicates the backend was constructed with missing
	// or malformed configuration.
	ErrInvalidConfig = errors.New("invalid generation configuration")

	// ErrEmptyQuery indicates the query text was empty.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrGenerationFailed indicates the backend call itself failed.
	ErrGenerationFailed = errors.New("answer generation failed")
)
