package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type otelTracer struct {
	inner trace.Tracer
}

// NewOTel returns a tracer named instrumentation from the global provider.
func NewOTel(instrumentation string) Tracer {
	return FromOTel(otel.Tracer(instrumentation))
}

// FromOTel adapts an existing OpenTelemetry tracer.
func FromOTel(t trace.Tracer) Tracer {
	return otelTracer{inner: t}
}

// NewNoop returns a tracer whose spans record nothing.
func NewNoop() Tracer {
	return FromOTel(noop.NewTracerProvider().Tracer(""))
}

func (t otelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.inner.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, otelSpan{span}
}

type otelSpan struct {
	trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.Span.SetAttributes(attrs...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(attrs...))
}
