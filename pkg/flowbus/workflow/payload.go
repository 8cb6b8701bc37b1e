package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
)

// Topic segments of the workflow protocol.
const (
	topicPrefix      = "WF."
	topicInit        = ".INIT"
	topicSubmit      = ".SUBMIT"
	topicStateChange = ".STATE.CHANGE"
)

// InitTopic returns WF.<workflow>.INIT.
func InitTopic(workflow string) string {
	return topicPrefix + workflow + topicInit
}

// SubmitTopic returns WF.<workflow>.SUBMIT.
func SubmitTopic(workflow string) string {
	return topicPrefix + workflow + topicSubmit
}

// StateChangeTopic returns WF.<workflow>.STATE.CHANGE.
func StateChangeTopic(workflow string) string {
	return topicPrefix + workflow + topicStateChange
}

// EventType distinguishes the two envelopes an execution publishes.
type EventType string

// Envelope event types.
const (
	EventTypeInit   EventType = "INIT"
	EventTypeSubmit EventType = "SUBMIT"
)

// Header identifies the execution an envelope belongs to.
type Header struct {
	RegistrationID string    `json:"registrationId"`
	Workflow       string    `json:"workflow"`
	EventType      EventType `json:"eventType"`
}

// Envelope is the payload of INIT and SUBMIT events.
type Envelope struct {
	Header Header `json:"header"`
	Body   any    `json:"body"`
}

// EnvelopeFrom extracts the envelope from an INIT or SUBMIT delivery.
func EnvelopeFrom(evt flowbus.Event) (Envelope, bool) {
	switch env := evt.Data.(type) {
	case Envelope:
		return env, true
	case *Envelope:
		if env != nil {
			return *env, true
		}
	}
	return Envelope{}, false
}

// StateEvent carries the data of a state change.
type StateEvent struct {
	Data any `json:"data,omitempty"`
}

// StateChange is the payload of STATE.CHANGE events.
type StateChange struct {
	// Value is the state name that gets classified.
	Value string `json:"value"`

	// Event holds the data handed to the terminal callbacks.
	Event *StateEvent `json:"event,omitempty"`

	// RegistrationID optionally targets one execution. When empty, every
	// execution of the workflow sees the change.
	RegistrationID string `json:"registrationId,omitempty"`
}

// Data returns the inner event data, or nil if absent.
func (c StateChange) Data() any {
	if c.Event == nil {
		return nil
	}
	return c.Event.Data
}

// ParseStateChange reads a STATE.CHANGE payload. It accepts a StateChange
// (or pointer), a map[string]any with the same field names, raw JSON as
// []byte, json.RawMessage or string, and any other value that round-trips
// through JSON into a StateChange.
func ParseStateChange(data any) (StateChange, error) {
	switch d := data.(type) {
	case StateChange:
		return d, nil
	case *StateChange:
		if d == nil {
			return StateChange{}, fmt.Errorf("state change: nil payload")
		}
		return *d, nil
	case map[string]any:
		return stateChangeFromMap(d), nil
	case json.RawMessage:
		return stateChangeFromJSON(d)
	case []byte:
		return stateChangeFromJSON(d)
	case string:
		return stateChangeFromJSON([]byte(d))
	case nil:
		return StateChange{}, fmt.Errorf("state change: no payload")
	}

	change, err := flowbus.Decode[StateChange](data)
	if err != nil {
		return StateChange{}, fmt.Errorf("state change: %w", err)
	}
	return change, nil
}

func stateChangeFromMap(m map[string]any) StateChange {
	var change StateChange
	change.Value, _ = m["value"].(string)

	if inner, ok := m["event"].(map[string]any); ok {
		change.Event = &StateEvent{Data: inner["data"]}
	}

	if id, ok := m["registrationId"].(string); ok {
		change.RegistrationID = id
	} else if header, ok := m["header"].(map[string]any); ok {
		change.RegistrationID, _ = header["registrationId"].(string)
	}
	return change
}

func stateChangeFromJSON(raw []byte) (StateChange, error) {
	if !gjson.ValidBytes(raw) {
		return StateChange{}, fmt.Errorf("state change: invalid JSON payload")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return StateChange{}, fmt.Errorf("state change: payload is not an object")
	}

	change := StateChange{
		Value: doc.Get("value").String(),
	}
	if inner := doc.Get("event"); inner.IsObject() {
		change.Event = &StateEvent{Data: inner.Get("data").Value()}
	}
	if id := doc.Get("registrationId"); id.Exists() {
		change.RegistrationID = id.String()
	} else {
		change.RegistrationID = doc.Get("header.registrationId").String()
	}
	return change, nil
}
