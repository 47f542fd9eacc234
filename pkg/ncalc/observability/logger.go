// Package observability provides logging, metrics and tracing hooks for
// parsing and evaluating expressions.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Everything is opt-in. A nil logger is ignored and the Noop types stand in
// for metrics and tracing when they are disabled.
package observability

import (
	"log/slog"
	"time"
	"unicode/utf8"
)

// maxLoggedText caps how much of an expression is copied into a log record.
const maxLoggedText = 256

// EnrichLogger returns a logger that tags every record with the expression id.
//
// Example:
//
//	logger = EnrichLogger(logger, expr.ID())
//	logger.Info("evaluating") // includes expression_id
func EnrichLogger(logger *slog.Logger, exprID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("expression_id", exprID))
}

// LogParse logs the outcome of parsing an expression. Failures go to Warn.
func LogParse(logger *slog.Logger, text string, dur time.Duration, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("expression parse failed",
			slog.String("expression", truncate(text)),
			slog.String("error", err.Error()),
			slog.Float64("duration_ms", durationMs(dur)),
		)
		return
	}
	logger.Debug("expression parsed",
		slog.String("expression", truncate(text)),
		slog.Float64("duration_ms", durationMs(dur)),
	)
}

// LogEvaluateStart logs the start of an evaluation.
func LogEvaluateStart(logger *slog.Logger, text string) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation starting",
		slog.String("expression", truncate(text)),
	)
}

// LogEvaluateComplete logs a successful evaluation.
func LogEvaluateComplete(logger *slog.Logger, text string, result any, durMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation completed",
		slog.String("expression", truncate(text)),
		slog.Any("result", result),
		slog.Float64("duration_ms", durMs),
	)
}

// LogEvaluateError logs a failed evaluation.
func LogEvaluateError(logger *slog.Logger, text string, err error) {
	if logger == nil {
		return
	}
	logger.Error("evaluation failed",
		slog.String("expression", truncate(text)),
		slog.String("error", err.Error()),
	)
}

// LogParameterUpdate logs a write to a parameter by an assignment.
// index is nil for a whole-value write.
func LogParameterUpdate(logger *slog.Logger, name string, index, value any) {
	if logger == nil {
		return
	}
	attrs := []any{slog.String("parameter", name), slog.Any("value", value)}
	if index != nil {
		attrs = append(attrs, slog.Any("index", index))
	}
	logger.Debug("parameter updated", attrs...)
}

// LogFunctionCall logs a function dispatch.
func LogFunctionCall(logger *slog.Logger, name string, argc int) {
	if logger == nil {
		return
	}
	logger.Debug("function called",
		slog.String("function", name),
		slog.Int("args", argc),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... evaluate ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return durationMs(time.Since(start))
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func truncate(text string) string {
	if len(text) <= maxLoggedText {
		return text
	}
	cut := maxLoggedText
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
