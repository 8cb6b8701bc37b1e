package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
)

// State is the lifecycle state of an execution.
type State string

// Execution states.
const (
	StateCreated   State = "created"
	StateAwaiting  State = "awaiting"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Terminal outcomes as reported to logs and metrics.
const (
	outcomeSuccess   = "success"
	outcomeError     = "error"
	outcomeCancelled = "cancelled"
)

// errWorkflowFailed marks the execution span when an error state arrives.
var errWorkflowFailed = errors.New("workflow reported an error state")

// Execution is one in-flight run of a workflow. It holds the registration
// ID and the STATE.CHANGE subscription registered under it.
type Execution struct {
	id        string
	workflow  string
	protocol  *Protocol
	config    Config
	callbacks Callbacks
	elapsed   func() time.Duration
	logger    *slog.Logger
	span      trace.Span

	mu    sync.Mutex
	state State
	done  chan struct{}
}

// ID returns the registration ID.
func (e *Execution) ID() string {
	return e.id
}

// Workflow returns the workflow name.
func (e *Execution) Workflow() string {
	return e.workflow
}

// State returns the current state.
func (e *Execution) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Done is closed once the execution reaches a terminal state.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Cancel stops waiting for a result. The subscription is removed and no
// callback runs. Returns false if the execution had already ended.
func (e *Execution) Cancel() bool {
	return e.finish(context.Background(), StateCancelled, outcomeCancelled, "", nil)
}

func (e *Execution) await() {
	e.mu.Lock()
	if e.state == StateCreated {
		e.state = StateAwaiting
	}
	e.mu.Unlock()
}

// handleStateChange is the STATE.CHANGE listener.
func (e *Execution) handleStateChange(ctx context.Context, d flowbus.Delivery) error {
	change, err := ParseStateChange(d.Data)
	if err != nil {
		return fmt.Errorf("execution %s: %w", e.id, err)
	}
	if change.RegistrationID != "" && change.RegistrationID != e.id {
		return nil
	}
	if e.State().Terminal() {
		return nil
	}

	switch {
	case e.config.isSuccess(change.Value):
		if e.finish(ctx, StateSucceeded, outcomeSuccess, change.Value, nil) && e.callbacks.OnSuccess != nil {
			e.callbacks.OnSuccess(change.Data())
		}
	case e.config.isError(change.Value):
		if e.finish(ctx, StateFailed, outcomeError, change.Value, errWorkflowFailed) && e.callbacks.OnError != nil {
			data := change.Data()
			if data == nil {
				data = d.Data
			}
			e.callbacks.OnError(data)
		}
	default:
		observability.LogWorkflowProgress(e.logger, change.Value)
		e.protocol.spans.AddSpanEvent(e.span, "workflow.progress", attribute.String("workflow.state", change.Value))
		if e.callbacks.OnProgress != nil {
			e.callbacks.OnProgress(change.Value, change)
		}
	}
	return nil
}

// finish moves the execution to a terminal state exactly once. The
// subscription is removed before it returns, so callbacks run after
// cleanup. Returns false if another call already finished the execution.
func (e *Execution) finish(ctx context.Context, to State, outcome, value string, spanErr error) bool {
	e.mu.Lock()
	if e.state.Terminal() {
		e.mu.Unlock()
		return false
	}
	e.state = to
	e.mu.Unlock()

	p := e.protocol
	p.bus.Unsubscribe(e.id)
	close(e.done)

	elapsed := e.elapsed()
	p.spans.EndSpanWithError(e.span, spanErr)
	p.metrics.RecordWorkflow(ctx, e.workflow, outcome, elapsed)
	observability.LogWorkflowTerminal(e.logger, outcome, value, elapsed)
	return true
}
