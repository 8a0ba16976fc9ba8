package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ollapdf/ollapdf-api/internal/api/shared"
	"github.com/ollapdf/ollapdf-api/internal/generation"
	"github.com/ollapdf/ollapdf-api/internal/queue"
)

// QueryService is the caller-facing surface of the query queue as seen by
// the HTTP layer.
type QueryService interface {
	SubmitQuery(ctx context.Context, text string) (string, error)
	GetQuery(id string) (queue.Record, error)
	GetPosition(id string) int
	Stats() queue.Stats
}

// SubmitQueryRequest represents the request body for submitting a new query
type SubmitQueryRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// SubmitQueryResponse is returned on successful submission
type SubmitQueryResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}

// AnswerResponse carries the generated answer of a completed query
type AnswerResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// QueryResponse represents the full lifecycle record of a query
type QueryResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Answer      *AnswerResponse `json:"answer,omitempty"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
}

// PositionResponse reports a query's place in line
type PositionResponse struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// StatsResponse is a point-in-time snapshot of queue occupancy
type StatsResponse struct {
	Queued        int `json:"queued"`
	Processing    int `json:"processing"`
	Active        int `json:"active"`
	MaxConcurrent int `json:"max_concurrent"`
}

// QueryHandler handles query-related HTTP requests
type QueryHandler struct {
	service   QueryService
	validator *validator.Validate
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(service QueryService) *QueryHandler {
	return &QueryHandler{
		service:   service,
		validator: validator.New(),
	}
}

// SubmitQuery handles POST /api/queries requests. Submission only performs
// bookkeeping; processing happens asynchronously, so the response is a 202
// with the ID to poll.
func (h *QueryHandler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	var req SubmitQueryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	id, err := h.service.SubmitQuery(r.Context(), req.Text)
	if err != nil {
		slog.Error("failed to submit query", "error", err)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitQueryResponse{
		ID:       id,
		Status:   string(queue.StatusQueued),
		Position: h.service.GetPosition(id),
	})
}

// GetQuery handles GET /api/queries/{id} requests
func (h *QueryHandler) GetQuery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.service.GetQuery(id)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(rec))
}

// GetPosition handles GET /api/queries/{id}/position requests. Unknown and
// finished queries both report -1; callers distinguish them via GetQuery.
func (h *QueryHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	shared.RespondWithJSON(w, r, http.StatusOK, PositionResponse{
		ID:       id,
		Position: h.service.GetPosition(id),
	})
}

// GetStats handles GET /api/queue/stats requests
func (h *QueryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.Stats()

	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		Queued:        stats.Queued,
		Processing:    stats.Processing,
		Active:        stats.Active,
		MaxConcurrent: stats.MaxConcurrent,
	})
}

// recordToResponse converts a queue.Record to a QueryResponse
func recordToResponse(rec queue.Record) QueryResponse {
	resp := QueryResponse{
		ID:          rec.ID,
		Status:      string(rec.Status),
		Error:       rec.Error,
		SubmittedAt: rec.SubmittedAt,
		StartedAt:   rec.StartedAt,
		EndedAt:     rec.EndedAt,
	}
	if answer, ok := rec.Result.(*generation.Answer); ok {
		resp.Answer = &AnswerResponse{
			Text:  answer.Text,
			Model: answer.Model,
		}
	}
	return resp
}
