package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
)

// Callbacks receive the outcome of an execution. Any of them may be nil.
type Callbacks struct {
	// OnSuccess receives the inner event data of the success state change.
	OnSuccess func(data any)

	// OnError receives the inner event data of the error state change, or
	// the raw STATE.CHANGE payload when it carries no inner data.
	OnError func(data any)

	// OnProgress receives every state change that is neither success nor
	// error. The execution keeps waiting.
	OnProgress func(state string, change StateChange)
}

// Protocol runs workflow executions over a bus.
type Protocol struct {
	bus     *flowbus.Bus
	config  Config
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// New creates a protocol bound to bus.
func New(bus *flowbus.Bus, opts ...Option) *Protocol {
	p := &Protocol{
		bus:     bus,
		config:  DefaultConfig(),
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns a copy of the protocol's default classification.
func (p *Protocol) Config() Config {
	return p.config.clone()
}

// Execute starts an execution of the named workflow.
//
// The execution is subscribed before INIT is published, so handlers that
// answer synchronously are observed. Both INIT and SUBMIT are always
// published, even if the execution already ended while INIT was delivered.
func (p *Protocol) Execute(ctx context.Context, name string, params any, cb Callbacks, opts ...ExecOption) *Execution {
	cfg := p.config.clone()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := newRegistrationID()
	exec := &Execution{
		id:        id,
		workflow:  name,
		protocol:  p,
		config:    cfg,
		callbacks: cb,
		state:     StateCreated,
		elapsed:   observability.TimedOperation(),
		done:      make(chan struct{}),
		logger:    observability.EnrichLogger(p.logger, name, id),
	}
	ctx, exec.span = p.spans.StartWorkflowSpan(ctx, name, id)

	observability.LogWorkflowStart(p.logger, name, id)

	// Literal so a '*' in name cannot widen the subscription to other workflows.
	p.bus.Subscribe(id, StateChangeTopic(name), exec.handleStateChange, flowbus.WithLiteralPattern())
	exec.await()

	header := Header{RegistrationID: id, Workflow: name}

	header.EventType = EventTypeInit
	p.bus.Publish(ctx, InitTopic(name), Envelope{Header: header, Body: params})

	header.EventType = EventTypeSubmit
	p.bus.Publish(ctx, SubmitTopic(name), Envelope{Header: header, Body: params})

	return exec
}

// newRegistrationID returns "<unix millis>-<8 hex chars>". Uniqueness is not
// guaranteed by construction.
func newRegistrationID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}
