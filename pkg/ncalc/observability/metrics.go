package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records expression engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordParse records one parse with its duration and outcome.
	RecordParse(ctx context.Context, duration time.Duration, ok bool)

	// RecordEvaluation records one evaluation. category names the error
	// category of a failed evaluation and is ignored when ok is true.
	RecordEvaluation(ctx context.Context, duration time.Duration, ok bool, category string)

	// RecordFunctionCall records a dispatch to a function by name.
	RecordFunctionCall(ctx context.Context, name string)
}

type otelMetrics struct {
	parses        metric.Int64Counter
	parseLatency  metric.Float64Histogram
	evaluations   metric.Int64Counter
	evalErrors    metric.Int64Counter
	evalLatency   metric.Float64Histogram
	functionCalls metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("ncalc")

	parses, err := meter.Int64Counter("ncalc.parse.total",
		metric.WithDescription("Number of expressions parsed"),
	)
	if err != nil {
		return nil, err
	}

	parseLatency, err := meter.Float64Histogram("ncalc.parse.latency_ms",
		metric.WithDescription("Parse latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("ncalc.evaluate.total",
		metric.WithDescription("Number of evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("ncalc.evaluate.errors",
		metric.WithDescription("Number of failed evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("ncalc.evaluate.latency_ms",
		metric.WithDescription("Evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	functionCalls, err := meter.Int64Counter("ncalc.function.calls",
		metric.WithDescription("Number of function dispatches"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		parses:        parses,
		parseLatency:  parseLatency,
		evaluations:   evaluations,
		evalErrors:    evalErrors,
		evalLatency:   evalLatency,
		functionCalls: functionCalls,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordParse records a parse.
func (m *otelMetrics) RecordParse(ctx context.Context, duration time.Duration, ok bool) {
	attrs := metric.WithAttributes(attribute.Bool("success", ok))
	m.parses.Add(ctx, 1, attrs)
	m.parseLatency.Record(ctx, durationMs(duration), attrs)
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, duration time.Duration, ok bool, category string) {
	attrs := metric.WithAttributes(attribute.Bool("success", ok))
	m.evaluations.Add(ctx, 1, attrs)
	m.evalLatency.Record(ctx, durationMs(duration), attrs)

	if !ok {
		m.evalErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
}

// RecordFunctionCall records a function dispatch.
func (m *otelMetrics) RecordFunctionCall(ctx context.Context, name string) {
	m.functionCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("function", name)))
}
