package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gasflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestErrorKeepsContextFieldsAndStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: "debug", Format: FormatJSON, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithSaleID(ctx, "sale-9")
	ctx = log.WithCourierID(ctx, "courier-2")
	log.Error(ctx, "edit failed", errors.New("db closed"))

	entry := lastEntry(t, buf)
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "sale-9", entry["sale_id"])
	assert.Equal(t, "courier-2", entry["courier_id"])
	assert.Equal(t, "db closed", entry["error"])
	assert.Contains(t, entry, "stack")
}

func TestErrorTagsCodeAndSkipsStackForClientErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Format: FormatJSON, Output: buf})

	log.Error(context.Background(), "rejected", pkgerrors.New(pkgerrors.CodeStateConflict, "stock would go negative"))
	entry := lastEntry(t, buf)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), entry["error_code"])
	assert.NotContains(t, entry, "stack")

	log.Error(context.Background(), "lock backend", pkgerrors.New(pkgerrors.CodeDependency, "redis down"))
	entry = lastEntry(t, buf)
	assert.Equal(t, string(pkgerrors.CodeDependency), entry["error_code"])
	assert.Contains(t, entry, "stack")
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "cron-worker", Format: FormatJSON, Output: buf}).Warn(context.Background(), "quiet")
	assert.NotContains(t, lastEntry(t, buf), "stack")

	buf.Reset()
	New(Options{ServiceName: "cron-worker", Format: FormatJSON, Output: buf, WarnStack: true}).Warn(context.Background(), "loud")
	assert.Contains(t, lastEntry(t, buf), "stack")
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: "warn", Format: FormatJSON, Output: buf})
	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestForAppAddsEnvAndFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := ForApp("backoffice-cli", config.AppConfig{Env: "dev", LogLevel: "info", LogFormat: FormatJSON}, buf)
	log.Info(log.WithFields(context.Background(), map[string]any{"rows": 3}), "seeded")

	entry := lastEntry(t, buf)
	assert.Equal(t, "dev", entry["env"])
	assert.Equal(t, "backoffice-cli", entry["service"])
	assert.EqualValues(t, 3, entry["rows"])

	buf.Reset()
	ForApp("api", config.AppConfig{LogFormat: FormatConsole}, buf).Info(context.Background(), "hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()), "console format is not json")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
}
