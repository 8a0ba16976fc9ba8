package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollapdf/ollapdf-api/internal/api"
	"github.com/ollapdf/ollapdf-api/internal/config"
	"github.com/ollapdf/ollapdf-api/internal/generation"
	"github.com/ollapdf/ollapdf-api/internal/queue"
	"github.com/ollapdf/ollapdf-api/internal/service"
)

type stubAnswerer struct {
	fn func(ctx context.Context, query string) (*generation.Answer, error)
}

func (s *stubAnswerer) GenerateAnswer(ctx context.Context, query string) (*generation.Answer, error) {
	return s.fn(ctx, query)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// startTestServer wires the real queue, service, and router behind httptest.
func startTestServer(t *testing.T, answerer generation.Answerer) *httptest.Server {
	t.Helper()

	q := queue.New(queue.DefaultConfig(), testLogger())
	t.Cleanup(q.Stop)

	svc := service.NewQueryService(q, answerer, config.RetentionConfig{}, testLogger())
	srv := httptest.NewServer(newRouter(api.NewQueryHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewAnswererSelectsProvider(t *testing.T) {
	ctx := context.Background()

	a, err := newAnswerer(ctx, testLogger(), config.LLMConfig{
		Provider:    "ollama",
		OllamaHost:  "http://localhost:11434",
		ModelName:   "llama2",
		Temperature: 0.1,
		Timeout:     time.Minute,
	})
	require.NoError(t, err)
	assert.NotNil(t, a)

	_, err = newAnswerer(ctx, testLogger(), config.LLMConfig{Provider: "other"})
	assert.Error(t, err)
}

func TestSubmitAndPollLifecycle(t *testing.T) {
	answerer := &stubAnswerer{
		fn: func(ctx context.Context, query string) (*generation.Answer, error) {
			return &generation.Answer{Text: "answer to " + query, Model: "stub"}, nil
		},
	}
	srv := startTestServer(t, answerer)

	// Submit a query.
	body, _ := json.Marshal(map[string]string{"text": "what is clause 7?"})
	resp, err := http.Post(srv.URL+"/api/queries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submitted api.SubmitQueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	require.NoError(t, resp.Body.Close())
	require.NotEmpty(t, submitted.ID)

	// Poll until a terminal status appears, the way the original UI does.
	var final api.QueryResponse
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/queries/" + submitted.ID)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(resp.Body).Decode(&final); err != nil {
			return false
		}
		return final.Status == "completed" || final.Status == "error"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "completed", final.Status)
	require.NotNil(t, final.Answer)
	assert.Equal(t, "answer to what is clause 7?", final.Answer.Text)

	// A finished query reports position -1.
	resp, err = http.Get(srv.URL + "/api/queries/" + submitted.ID + "/position")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var pos api.PositionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pos))
	assert.Equal(t, -1, pos.Position)
}

func TestStatsEndpoint(t *testing.T) {
	srv := startTestServer(t, &stubAnswerer{
		fn: func(ctx context.Context, query string) (*generation.Answer, error) {
			return &generation.Answer{Text: "ok"}, nil
		},
	})

	resp, err := http.Get(srv.URL + "/api/queue/stats")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats api.StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.MaxConcurrent)
}

func TestHealthz(t *testing.T) {
	srv := startTestServer(t, &stubAnswerer{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
