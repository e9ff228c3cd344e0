package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	return line
}

func TestErrorWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf)

	l.Error(errors.New("boom"), "OutboxRelay - processEventsBatch - r.es.SendEvents")

	line := decode(t, &buf)
	require.Equal(t, "error", line["level"])
	require.Equal(t, "boom", line["error"])
	require.Equal(t, "OutboxRelay - processEventsBatch - r.es.SendEvents", line["message"])
}

func TestInfoFormats(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf)

	l.Info("deleted old events, count = %d", 3)

	line := decode(t, &buf)
	require.Equal(t, "info", line["level"])
	require.Equal(t, "deleted old events, count = 3", line["message"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", &buf)

	l.Info("hidden")
	l.Debug("hidden")
	require.Zero(t, buf.Len())

	l.Warn("shown %s", "here")
	line := decode(t, &buf)
	require.Equal(t, "warn", line["level"])
}
