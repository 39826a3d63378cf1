package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(l *Logger) *Logger {
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixed(New())
	l.SetOutput(&buf)
	l.With("score", String("run_id", "r1")).Info("scored", Int("rows", 3), Float("secs", 0.5))
	assert.Equal(t, "2024-01-02T03:04:05Z [INFO] scored component=score rows=3 run_id=r1 secs=0.5\n", buf.String())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixed(New())
	l.SetOutput(&buf)
	l.SetFormat("JSON")
	l.Error("load failed", errors.New("boom"), String("asset", "x.json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "load failed", got["message"])
	fields := got["fields"].(map[string]any)
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "x.json", fields["asset"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, l.Enabled(DEBUG))

	l.SetLevel(DEBUG)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "[DEBUG] shown")

	Discard().Error("nothing", errors.New("x"))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": DEBUG, "INFO": INFO, "": INFO, "warning": WARN, "Error": ERROR} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
