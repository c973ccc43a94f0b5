package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"  Error  ", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLoggerAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "bondctl", "v1.2.3", slog.LevelInfo)

	logger.Info("hello", "node", "n1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "bondctl", record["module"])
	assert.Equal(t, "v1.2.3", record["version"])
	assert.Equal(t, "n1", record["node"])
	assert.NotContains(t, record, "source")
}

func TestLoggerDebugIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "bondctl", "dev", slog.LevelDebug)

	logger.Debug("detail")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Contains(t, record, "source")
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "", "", slog.LevelWarn)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}
