package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallikerijaved/CareGpt/internal/config"
	"github.com/hallikerijaved/CareGpt/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(raw), raw)
	}
}

func TestNewConsoleOnlyRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := logging.New(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "component", "test")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewFansOutToJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caregpt.log")
	var buf bytes.Buffer

	logger, closer, err := logging.New(config.LogConfig{Level: "info", File: path}, &buf)
	require.NoError(t, err)

	logger.Info("session created", "session_id", "abc")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "session created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "session created", record["msg"])
	assert.Equal(t, "abc", record["session_id"])
}

func TestNewFailsOnUnwritableFile(t *testing.T) {
	_, _, err := logging.New(config.LogConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")}, &bytes.Buffer{})
	assert.Error(t, err)
}
