package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel).With(String("account", "alice"))

	l.Info("cycle done",
		Int("valid", 3),
		Duration("took", 1500*time.Millisecond),
		Bool("proxied", true),
		Error(errors.New("boom")),
	)

	m := decodeLine(t, &buf)
	assert.Equal(t, m["message"], "cycle done")
	assert.Equal(t, m["account"], "alice")
	assert.Equal(t, m["valid"], 3.0)
	assert.Equal(t, m["took"], 1500.0)
	assert.Equal(t, m["proxied"], true)
	assert.Equal(t, m["error"], "boom")
	assert.Equal(t, m["level"], "info")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Equal(t, buf.Len(), 0)

	l.Warn("shown", Int64("points", 7))
	m := decodeLine(t, &buf)
	assert.Equal(t, m["points"], 7.0)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.NotEqual(t, err, nil)
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	assert.Equal(t, err, nil)
	l.Info("to file")
	Nop().Error("dropped")
}
