package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollapdf/ollapdf-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLevel(tc.input), "input %q", tc.input)
	}
}

func TestSetupReturnsLoggerAndSetsDefault(t *testing.T) {
	logger := Setup(config.ServerConfig{Port: 8080, LogLevel: "debug"})
	require.NotNil(t, logger)
	assert.Equal(t, logger, slog.Default())

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
