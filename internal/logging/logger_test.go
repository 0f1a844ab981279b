package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwdate/review-backend/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewHandlerUsesConfig(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, &config.Config{LogLevel: "warn", AppEnv: "production"})
	log := slog.New(h)

	log.Info("dropped")
	log.Warn("kept", "review_id", "r1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "r1", entry["review_id"])
}

func TestMultiHandlerWithConfiguredBase(t *testing.T) {
	var buf bytes.Buffer
	base := NewHandler(&buf, &config.Config{LogLevel: "error", AppEnv: "test"})
	var records []slog.Record

	log := slog.New(NewMultiHandler(base, captureHandler{records: &records}))
	log.Info("capture only")
	log.Error("both")

	assert.Len(t, records, 2)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"msg":"both"`)
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var records []slog.Record
	sinkErr := errors.New("sink down")
	h := NewMultiHandler(failingHandler{err: sinkErr}, captureHandler{records: &records})

	log := slog.New(h)
	log.Error("boom")

	assert.Len(t, records, 1)
	err := h.Handle(context.Background(), records[0])
	assert.ErrorIs(t, err, sinkErr)
	assert.Len(t, records, 2)
}
