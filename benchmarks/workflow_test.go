package benchmarks

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
	"github.com/randalmurphal/flowbus/pkg/flowbus/workflow"
)

// answerSubmits registers a handler that reports success for every SUBMIT.
func answerSubmits(bus *flowbus.Bus, name string, payload func(env workflow.Envelope) any) {
	bus.Subscribe("handler", workflow.SubmitTopic(name), func(ctx context.Context, d flowbus.Delivery) error {
		env, ok := workflow.EnvelopeFrom(d.Event)
		if !ok {
			return nil
		}
		bus.Publish(ctx, workflow.StateChangeTopic(name), payload(env))
		return nil
	})
}

func newProtocol(bus *flowbus.Bus) *workflow.Protocol {
	return workflow.New(bus, workflow.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// BenchmarkWorkflow_Execute runs a full INIT, SUBMIT, STATE.CHANGE cycle
// with a struct payload.
func BenchmarkWorkflow_Execute(b *testing.B) {
	bus := newBus(flowbus.WithMaxHistorySize(0))
	answerSubmits(bus, "orders", func(env workflow.Envelope) any {
		return workflow.StateChange{
			Value:          "success",
			Event:          &workflow.StateEvent{Data: env.Body},
			RegistrationID: env.Header.RegistrationID,
		}
	})
	proto := newProtocol(bus)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proto.Execute(ctx, "orders", i, workflow.Callbacks{})
	}
}

// BenchmarkWorkflow_ExecuteJSON answers with a raw JSON payload.
func BenchmarkWorkflow_ExecuteJSON(b *testing.B) {
	bus := newBus(flowbus.WithMaxHistorySize(0))
	answerSubmits(bus, "orders", func(env workflow.Envelope) any {
		return []byte(`{"value":"success","event":{"data":{"ok":true}},"registrationId":"` +
			env.Header.RegistrationID + `"}`)
	})
	proto := newProtocol(bus)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proto.Execute(ctx, "orders", i, workflow.Callbacks{})
	}
}

// BenchmarkParseStateChange_Map parses the map form of a state change.
func BenchmarkParseStateChange_Map(b *testing.B) {
	payload := map[string]any{
		"value": "success",
		"event": map[string]any{"data": map[string]any{"y": 2}},
	}
	for i := 0; i < b.N; i++ {
		_, _ = workflow.ParseStateChange(payload)
	}
}

// BenchmarkParseStateChange_JSON parses the JSON form of a state change.
func BenchmarkParseStateChange_JSON(b *testing.B) {
	payload := []byte(`{"value":"success","event":{"data":{"y":2}},"header":{"registrationId":"1-abcdef12"}}`)
	for i := 0; i < b.N; i++ {
		_, _ = workflow.ParseStateChange(payload)
	}
}
