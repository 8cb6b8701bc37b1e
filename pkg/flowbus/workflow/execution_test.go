package workflow

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
)

// workflowCall is one RecordWorkflow invocation.
type workflowCall struct {
	workflow string
	outcome  string
}

type fakeMetrics struct {
	observability.NoopMetrics

	mu    sync.Mutex
	calls []workflowCall
}

func (m *fakeMetrics) RecordWorkflow(_ context.Context, workflow, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, workflowCall{workflow: workflow, outcome: outcome})
}

func newQuietBus() *flowbus.Bus {
	return flowbus.New(flowbus.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestExecution_LateDeliveryIsNoop(t *testing.T) {
	bus := newQuietBus()
	proto := New(bus)
	ctx := context.Background()

	var successes int
	exec := proto.Execute(ctx, "wf", nil, Callbacks{
		OnSuccess: func(any) { successes++ },
	})

	change := flowbus.Delivery{
		Event: flowbus.Event{Topic: StateChangeTopic("wf"), Data: StateChange{Value: "success"}},
	}
	require.NoError(t, exec.handleStateChange(ctx, change))
	// A delivery from a snapshot taken before cleanup still reaches the
	// listener; it must not fire callbacks again.
	require.NoError(t, exec.handleStateChange(ctx, change))

	assert.Equal(t, 1, successes)
	assert.Equal(t, StateSucceeded, exec.State())
}

func TestExecution_LogsRegistrationIDOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	bus := newQuietBus()
	proto := New(bus, WithLogger(logger))
	ctx := context.Background()

	exec := proto.Execute(ctx, "wf", nil, Callbacks{})
	bus.Publish(ctx, StateChangeTopic("wf"), StateChange{Value: "working"})
	bus.Publish(ctx, StateChangeTopic("wf"), StateChange{Value: "success"})

	var checked int
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, "workflow progress") && !strings.Contains(line, "workflow execution finished") {
			continue
		}
		checked++
		assert.Equal(t, 1, strings.Count(line, "registration_id="), line)
		assert.Contains(t, line, "registration_id="+exec.ID())
	}
	assert.Equal(t, 2, checked)
}

func TestExecution_RecordsMetrics(t *testing.T) {
	bus := newQuietBus()
	metrics := &fakeMetrics{}
	proto := New(bus, WithMetrics(metrics))
	ctx := context.Background()

	ok := proto.Execute(ctx, "wf", nil, Callbacks{})
	failed := proto.Execute(ctx, "wf", nil, Callbacks{})
	cancelled := proto.Execute(ctx, "wf", nil, Callbacks{})

	bus.Publish(ctx, StateChangeTopic("wf"), StateChange{Value: "success", RegistrationID: ok.ID()})
	bus.Publish(ctx, StateChangeTopic("wf"), StateChange{Value: "error", RegistrationID: failed.ID()})
	cancelled.Cancel()

	assert.Equal(t, []workflowCall{
		{workflow: "wf", outcome: outcomeSuccess},
		{workflow: "wf", outcome: outcomeError},
		{workflow: "wf", outcome: outcomeCancelled},
	}, metrics.calls)
}

func TestExecution_Span(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, root := provider.Tracer("test").Start(context.Background(), "root")

	bus := newQuietBus()
	proto := New(bus, WithSpanManager(spanRecorder{tracer: provider.Tracer("test")}))

	exec := proto.Execute(ctx, "wf", nil, Callbacks{})
	bus.Publish(ctx, StateChangeTopic("wf"), StateChange{Value: "working"})
	bus.Publish(ctx, StateChangeTopic("wf"), StateChange{Value: "failure"})
	root.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	wf := spans[0]
	assert.Equal(t, "workflow", wf.Name)
	assert.Equal(t, root.SpanContext().TraceID(), wf.SpanContext.TraceID())
	require.Len(t, wf.Events, 1)
	assert.Equal(t, "workflow.progress", wf.Events[0].Name)
	assert.Equal(t, codes.Error, wf.Status.Code)
	assert.Equal(t, StateFailed, exec.State())
}

// spanRecorder records workflow spans on a test tracer.
type spanRecorder struct {
	observability.NoopSpanManager
	tracer trace.Tracer
}

func (s spanRecorder) StartWorkflowSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "workflow")
}

func (s spanRecorder) EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s spanRecorder) AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
