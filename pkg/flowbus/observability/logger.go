// Package observability provides logging, metrics, and tracing for flowbus.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every helper tolerates a nil logger.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// LogDuplicateSubscription logs a rejected subscribe whose ID is taken.
func LogDuplicateSubscription(logger *slog.Logger, id, pattern string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("subscription ignored",
		slog.String("subscription_id", id),
		slog.String("pattern", pattern),
		slog.String("error", err.Error()),
	)
}

// LogListenerFault logs an error or panic raised by a listener.
func LogListenerFault(logger *slog.Logger, subscriptionID, topic string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.String("subscription_id", subscriptionID),
		slog.String("topic", topic),
		slog.String("error", err.Error()),
	)
}

// LogPublish logs a publish and how many listeners received it.
func LogPublish(logger *slog.Logger, topic, eventID string, deliveries int) {
	if logger == nil {
		return
	}
	logger.Debug("event published",
		slog.String("topic", topic),
		slog.String("event_id", eventID),
		slog.Int("deliveries", deliveries),
	)
}

// LogJournalError logs a failed journal write (non-fatal).
func LogJournalError(logger *slog.Logger, topic string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal append failed",
		slog.String("topic", topic),
		slog.String("error", err.Error()),
	)
}

// EnrichLogger adds workflow context to a logger.
func EnrichLogger(logger *slog.Logger, workflow, registrationID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("workflow", workflow),
		slog.String("registration_id", registrationID),
	)
}

// LogWorkflowStart logs the start of a workflow execution.
func LogWorkflowStart(logger *slog.Logger, workflow, registrationID string) {
	if logger == nil {
		return
	}
	logger.Info("workflow execution starting",
		slog.String("workflow", workflow),
		slog.String("registration_id", registrationID),
	)
}

// LogWorkflowProgress logs a non-terminal state change. logger is expected
// to come from EnrichLogger.
func LogWorkflowProgress(logger *slog.Logger, state string) {
	if logger == nil {
		return
	}
	logger.Debug("workflow progress", slog.String("state", state))
}

// LogWorkflowTerminal logs the end of a workflow execution. logger is
// expected to come from EnrichLogger.
// outcome is "success", "error", or "cancelled".
func LogWorkflowTerminal(logger *slog.Logger, outcome, state string, elapsed time.Duration) {
	if logger == nil {
		return
	}
	level := slog.LevelInfo
	if outcome == "error" {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "workflow execution finished",
		slog.String("outcome", outcome),
		slog.String("state", state),
		slog.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
	)
}

// TimedOperation starts a clock. The returned function reports the time
// elapsed since the call.
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
