package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json").With().Str("component", "session").Logger()

	log.Info().Int64("exam_id", 4).Msg("Session started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "Session started", entry["message"])
	assert.EqualValues(t, 4, entry["exam_id"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty")
	log.Warn().Msg("Redis unavailable")

	assert.Contains(t, buf.String(), "Redis unavailable")
	assert.NotContains(t, buf.String(), `"message"`)
}
