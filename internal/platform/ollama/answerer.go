// Package ollama implements the generation.Answerer boundary against an
// Ollama inference server. One Ollama host typically fronts a single GPU,
// which is why the request queue serializes calls to it.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/ollapdf/ollapdf-api/internal/config"
	"github.com/ollapdf/ollapdf-api/internal/generation"
)

// Answerer answers queries with a non-streaming Ollama generate call.
type Answerer struct {
	logger *slog.Logger
	client *api.Client

	model       string
	temperature float64
}

// NewAnswerer creates an Answerer from the LLM configuration. The HTTP
// client carries the configured timeout, so a hung inference call cannot
// hold a queue slot forever.
func NewAnswerer(logger *slog.Logger, cfg config.LLMConfig) (*Answerer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OllamaHost == "" {
		return nil, fmt.Errorf("%w: ollama host cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	base, err := url.Parse(cfg.OllamaHost)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama host %q: %v",
			generation.ErrInvalidConfig, cfg.OllamaHost, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Answerer{
		logger:      logger,
		client:      api.NewClient(base, &http.Client{Timeout: timeout}),
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
	}, nil
}

// GenerateAnswer sends the query to the Ollama server and collects the full
// response. It blocks for the duration of inference; cancellation and the
// client timeout are the only bounds.
func (a *Answerer) GenerateAnswer(ctx context.Context, query string) (*generation.Answer, error) {
	if query == "" {
		return nil, generation.ErrEmptyQuery
	}

	a.logger.DebugContext(ctx, "sending generate request to ollama",
		"model", a.model,
		"query_length", len(query))

	stream := false
	req := &api.GenerateRequest{
		Model:  a.model,
		Prompt: query,
		Stream: &stream,
		Options: map[string]any{
			"temperature": a.temperature,
		},
	}

	var sb strings.Builder
	start := time.Now()
	err := a.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "ollama generate call failed",
			"model", a.model,
			"error", err)
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	a.logger.InfoContext(ctx, "ollama generate call completed",
		"model", a.model,
		"answer_length", sb.Len(),
		"duration", time.Since(start))

	return &generation.Answer{
		Text:  sb.String(),
		Model: a.model,
	}, nil
}
