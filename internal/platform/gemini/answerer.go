// Package gemini implements the generation.Answerer boundary against
// Google's Gemini API, as an alternative to a self-hosted Ollama backend.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/ollapdf/ollapdf-api/internal/config"
	"github.com/ollapdf/ollapdf-api/internal/generation"
)

// Answerer answers queries with a single Gemini GenerateContent call.
type Answerer struct {
	logger *slog.Logger
	client *genai.Client

	model       string
	temperature float64
}

// NewAnswerer creates an Answerer from the LLM configuration.
func NewAnswerer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Answerer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Answerer{
		logger:      logger,
		client:      client,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
	}, nil
}

// GenerateAnswer sends the query to the Gemini API and returns the generated
// text. It blocks for the duration of the call; the passed context is the
// only cancellation bound.
func (a *Answerer) GenerateAnswer(ctx context.Context, query string) (*generation.Answer, error) {
	if query == "" {
		return nil, generation.ErrEmptyQuery
	}

	a.logger.DebugContext(ctx, "sending generate request to gemini",
		"model", a.model,
		"query_length", len(query))

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(query),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(a.temperature)),
		})
	if err != nil {
		a.logger.ErrorContext(ctx, "gemini API call failed",
			"model", a.model,
			"error", err)
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: gemini returned an empty response", generation.ErrGenerationFailed)
	}

	a.logger.InfoContext(ctx, "gemini API call completed",
		"model", a.model,
		"answer_length", len(text),
		"duration", time.Since(start))

	return &generation.Answer{
		Text:  text,
		Model: a.model,
	}, nil
}
