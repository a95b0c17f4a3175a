package logger

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
)

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tally.log")
	cfg := DefaultConfig(path)
	cfg.Level = slog.LevelInfo

	log, closer, err := New(cfg)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("toggled", "habit_id", "h1", "counter", 2)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "toggled", rec["msg"])
	assert.Equal(t, "h1", rec["habit_id"])
	assert.EqualValues(t, 2, rec["counter"])
}

func TestNew_ConsoleFansOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.log")
	var console bytes.Buffer
	cfg := DefaultConfig(path)
	cfg.Console = true
	cfg.ConsoleOut = &console
	cfg.NoColor = true

	log, closer, err := New(cfg)
	require.NoError(t, err)
	defer closer.Close()

	log.With("component", "api").Warn("duplicate completion record", "date", "2024-01-02")
	assert.Contains(t, console.String(), "duplicate completion record")
	assert.Contains(t, console.String(), "component=api")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"api"`)
}

func TestNew_NoSinks(t *testing.T) {
	log, closer, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	log.Error("goes nowhere")
	assert.False(t, Discard().Enabled(t.Context(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
