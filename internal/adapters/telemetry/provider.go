package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/mason/internal/core/ports"
)

var (
	_ ports.Tracer = (*OTelTracer)(nil)
	_ ports.Span   = (*OTelSpan)(nil)
)

// OTelTracer implements ports.Tracer on an OpenTelemetry tracer provider.
type OTelTracer struct {
	tracer   trace.Tracer
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer named name on tp.
func NewOTelTracer(tp trace.TracerProvider, name string) *OTelTracer {
	return &OTelTracer{tracer: tp.Tracer(name)}
}

// WithRenderer streams span output and plans to renderer.
func (t *OTelTracer) WithRenderer(renderer ports.Renderer) *OTelTracer {
	t.renderer = renderer
	return t
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, span := t.tracer.Start(ctx, name)
	s := &OTelSpan{span: span}
	for k, v := range cfg.Attributes {
		s.SetAttribute(k, v)
	}

	if t.renderer != nil {
		spanID := span.SpanContext().SpanID().String()
		renderer := t.renderer
		s.output = NewOutputBuffer(0, 0, func(data []byte) {
			renderer.OnTaskLog(spanID, data)
		})
	}
	return ctx, s
}

// EmitPlan records the plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, elements []string, deps map[string][]string, targets []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("elements", elements),
			attribute.StringSlice("targets", targets),
		))
	}

	if t.renderer != nil {
		t.renderer.OnPlanEmit(elements, deps, targets)
	}
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span   trace.Span
	output *OutputBuffer
}

// End flushes buffered output, records its size and completes the span.
func (s *OTelSpan) End() {
	if s.output != nil {
		_ = s.output.Close()
		s.span.SetAttributes(attribute.Int64("mason.output_bytes", s.output.Written()))
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	case fmt.Stringer:
		s.span.SetAttributes(attribute.String(key, v.String()))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write forwards p to the renderer, or records it as a span event when there is none.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.output != nil {
		return s.output.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
