package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ncalc")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartParseSpan starts a span around parsing text.
	StartParseSpan(ctx context.Context, text string) (context.Context, trace.Span)

	// StartEvaluateSpan starts a span around one evaluation of the
	// expression identified by exprID.
	StartEvaluateSpan(ctx context.Context, exprID, text string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses the global OTel tracer
// provider. Configure the provider before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartParseSpan starts a parse span.
func (m *otelSpanManager) StartParseSpan(ctx context.Context, text string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ncalc.parse",
		trace.WithAttributes(
			attribute.String("expression.text", truncate(text)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEvaluateSpan starts an evaluation span.
func (m *otelSpanManager) StartEvaluateSpan(ctx context.Context, exprID, text string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ncalc.evaluate",
		trace.WithAttributes(
			attribute.String("expression.id", exprID),
			attribute.String("expression.text", truncate(text)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
