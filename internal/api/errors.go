package api

import (
	"errors"
	"net/http"

	"github.com/ollapdf/ollapdf-api/internal/generation"
	"github.com/ollapdf/ollapdf-api/internal/queue"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, queue.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrEmptyQuery):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, queue.ErrNotFound):
		return "Query not found"

	case errors.Is(err, queue.ErrClosed):
		return "Service is shutting down"

	case errors.Is(err, generation.ErrEmptyQuery):
		return "Query text must not be empty"

	default:
		return "An unexpected error occurred"
	}
}
