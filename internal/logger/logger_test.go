package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("webhook", &buf, slog.LevelDebug)

	log.Info("order_added", "Updated in-progress order", "req-1", map[string]interface{}{
		"session_id": "abc",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Updated in-progress order", entry["msg"])
	assert.Equal(t, "webhook", entry["service"])
	assert.Equal(t, "order_added", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "abc", entry["session_id"])
}

func TestLoggerErrorGroup(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("webhook", &buf, slog.LevelDebug)

	log.Error("save_failed", "Failed to save order", "req-2", errors.New("boom"), nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	group, ok := entry["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boom", group["msg"])
	assert.NotEmpty(t, group["stack"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("webhook", &buf, slog.LevelInfo)

	log.Debug("noise", "should be dropped", "", nil)
	assert.Zero(t, buf.Len())
}

func TestLoggerWithService(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("webhook", &buf, slog.LevelDebug)

	base.With("tracking").Info("status_read", "Read order status", "", nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracking", entry["service"])
}

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, GenerateRequestID())
}
