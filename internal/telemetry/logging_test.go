package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestSetupLoggerJSON(t *testing.T) {
	restoreDefault(t)
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	logger := SetupLogger("info", FormatJSON, &buf)
	logger.Debug("hidden")
	logger.Info("processing service", "service", "Spooler")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "processing service", rec["msg"])
	assert.Equal(t, "Spooler", rec["service"])
}

func TestSetupLoggerEnvOverrides(t *testing.T) {
	restoreDefault(t)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")

	var buf bytes.Buffer
	logger := SetupLogger("debug", FormatJSON, &buf)
	logger.Warn("suppressed")
	logger.Error("shown")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "msg=shown")
	assert.Same(t, logger, slog.Default())
}
