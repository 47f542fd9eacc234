package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), buf
}

// records decodes every JSON line written to buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogParse(nil, "1+1", time.Millisecond, nil)
		LogEvaluateStart(nil, "1+1")
		LogEvaluateComplete(nil, "1+1", 2, 0.1)
		LogEvaluateError(nil, "1+1", errors.New("boom"))
		LogParameterUpdate(nil, "a", nil, 1)
		LogFunctionCall(nil, "Abs", 1)
	})
	assert.Nil(t, EnrichLogger(nil, "id"))
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := newTestLogger()
	EnrichLogger(logger, "expr-1").Info("hello")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "expr-1", recs[0]["expression_id"])
}

func TestLogParse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   string
		message string
	}{
		{"success", nil, "DEBUG", "expression parsed"},
		{"failure", errors.New("Parenthesis not closed."), "WARN", "expression parse failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			LogParse(logger, "(1 + 2", 2*time.Millisecond, tt.err)

			recs := records(t, buf)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.level, recs[0]["level"])
			assert.Equal(t, tt.message, recs[0]["msg"])
			assert.Equal(t, "(1 + 2", recs[0]["expression"])
			assert.InDelta(t, 2.0, recs[0]["duration_ms"], 0.001)
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), recs[0]["error"])
			}
		})
	}
}

func TestLogEvaluateLifecycle(t *testing.T) {
	logger, buf := newTestLogger()
	LogEvaluateStart(logger, "a * 2")
	LogEvaluateComplete(logger, "a * 2", 84, 1.5)
	LogEvaluateError(logger, "a * 2", errors.New("Parameter 'a' not defined."))

	recs := records(t, buf)
	require.Len(t, recs, 3)
	assert.Equal(t, "evaluation starting", recs[0]["msg"])
	assert.Equal(t, "evaluation completed", recs[1]["msg"])
	assert.EqualValues(t, 84, recs[1]["result"])
	assert.Equal(t, 1.5, recs[1]["duration_ms"])
	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "Parameter 'a' not defined.", recs[2]["error"])
}

func TestLogParameterUpdate(t *testing.T) {
	logger, buf := newTestLogger()
	LogParameterUpdate(logger, "a", nil, 5)
	LogParameterUpdate(logger, "list", 2, "x")

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0]["parameter"])
	assert.NotContains(t, recs[0], "index")
	assert.EqualValues(t, 2, recs[1]["index"])
	assert.Equal(t, "x", recs[1]["value"])
}

func TestLogFunctionCall(t *testing.T) {
	logger, buf := newTestLogger()
	LogFunctionCall(logger, "Round", 2)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "Round", recs[0]["function"])
	assert.EqualValues(t, 2, recs[0]["args"])
}

func TestTruncate(t *testing.T) {
	short := "1 + 1"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("é", maxLoggedText)
	got := truncate(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxLoggedText+3)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), 5.0)
}
