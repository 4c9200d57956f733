package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	bderrors "github.com/conneroisu/webbuilder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer, level LogLevel) *SlogLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}

	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, nil, "warn")
	logger.Error(ctx, errors.New("boom"), "error")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["msg"])
	assert.Equal(t, "error", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestWithFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	base := newJSONLogger(&buf, LevelDebug)
	logger := base.With("project", "demo").WithComponent("export")

	logger.Info(context.Background(), "exported", "files", 3)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "export", lines[0]["component"])
	assert.Equal(t, "demo", lines[0]["project"])
	assert.Equal(t, float64(3), lines[0]["files"])

	// the parent logger is not affected
	buf.Reset()
	base.Info(context.Background(), "plain")
	lines = decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "project")
}

func TestBuilderErrorAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	err := bderrors.NewValidationError(bderrors.CodeDuplicatePath, "path exists")
	logger.Warn(context.Background(), err, "rejected")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "validation", lines[0]["error_type"])
	assert.Equal(t, bderrors.CodeDuplicatePath, lines[0]["error_code"])
}

func TestOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	op := StartOperation(logger, "export")
	op.End(context.Background())

	op = StartOperation(logger, "save")
	op.EndWithError(context.Background(), errors.New("locked"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "export", lines[0]["operation"])
	assert.Contains(t, lines[0], "duration_ms")
	assert.Equal(t, "save", lines[1]["operation"])
	assert.Equal(t, "locked", lines[1]["error"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		l := Nop().With("a", 1).WithComponent("x")
		l.Error(context.Background(), errors.New("ignored"), "ignored")
	})
}
