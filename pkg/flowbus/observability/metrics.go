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

// MetricsRecorder records flowbus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish and the number of listeners invoked.
	RecordPublish(ctx context.Context, topic string, deliveries int)

	// RecordListenerFault records a listener that returned an error or panicked.
	RecordListenerFault(ctx context.Context, topic string, panicked bool)

	// RecordWorkflow records a finished workflow execution.
	RecordWorkflow(ctx context.Context, workflow, outcome string, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes       metric.Int64Counter
	deliveries      metric.Int64Histogram
	listenerFaults  metric.Int64Counter
	workflowRuns    metric.Int64Counter
	workflowLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowbus")

	publishes, err := meter.Int64Counter("flowbus.publish.count",
		metric.WithDescription("Number of published events"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Histogram("flowbus.publish.deliveries",
		metric.WithDescription("Listeners invoked per published event"),
	)
	if err != nil {
		return nil, err
	}

	listenerFaults, err := meter.Int64Counter("flowbus.listener.faults",
		metric.WithDescription("Number of listener errors and panics"),
	)
	if err != nil {
		return nil, err
	}

	workflowRuns, err := meter.Int64Counter("flowbus.workflow.executions",
		metric.WithDescription("Number of finished workflow executions"),
	)
	if err != nil {
		return nil, err
	}

	workflowLatency, err := meter.Float64Histogram("flowbus.workflow.latency_ms",
		metric.WithDescription("Workflow execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:       publishes,
		deliveries:      deliveries,
		listenerFaults:  listenerFaults,
		workflowRuns:    workflowRuns,
		workflowLatency: workflowLatency,
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

// RecordPublish records a publish.
func (m *otelMetrics) RecordPublish(ctx context.Context, topic string, deliveries int) {
	attrs := metric.WithAttributes(attribute.String("topic", topic))
	m.publishes.Add(ctx, 1, attrs)
	m.deliveries.Record(ctx, int64(deliveries), attrs)
}

// RecordListenerFault records a listener fault.
func (m *otelMetrics) RecordListenerFault(ctx context.Context, topic string, panicked bool) {
	m.listenerFaults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.Bool("panic", panicked),
	))
}

// RecordWorkflow records a finished workflow execution.
func (m *otelMetrics) RecordWorkflow(ctx context.Context, workflow, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.String("outcome", outcome),
	)
	m.workflowRuns.Add(ctx, 1, attrs)
	m.workflowLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}
