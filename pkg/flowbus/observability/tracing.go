package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the flowbus tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("flowbus")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPublishSpan starts a span covering synchronous delivery of one event.
	StartPublishSpan(ctx context.Context, topic, eventID string) (context.Context, trace.Span)

	// StartWorkflowSpan starts a span that lives until the execution ends.
	StartWorkflowSpan(ctx context.Context, workflow, registrationID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the span.
	AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartPublishSpan starts a span for one publish.
func (m *otelSpanManager) StartPublishSpan(ctx context.Context, topic, eventID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowbus.publish",
		trace.WithAttributes(
			attribute.String("event.topic", topic),
			attribute.String("event.id", eventID),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
}

// StartWorkflowSpan starts a span for one workflow execution.
func (m *otelSpanManager) StartWorkflowSpan(ctx context.Context, workflow, registrationID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowbus.workflow",
		trace.WithAttributes(
			attribute.String("workflow.name", workflow),
			attribute.String("workflow.registration_id", registrationID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
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

// AddSpanEvent adds an event to the span if it is recording.
func (m *otelSpanManager) AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
