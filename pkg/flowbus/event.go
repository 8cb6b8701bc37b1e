package flowbus

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Event is a published message. Events are immutable once published:
// the bus copies Metadata at publish time and again for every listener and
// every History read.
type Event struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Data      any            `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func newEvent(topic string, data any, metadata map[string]any) Event {
	return Event{
		ID:        uuid.New().String(),
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now(),
		Metadata:  maps.Clone(metadata),
	}
}

// Meta returns a metadata value, or nil if absent.
func (e Event) Meta(key string) any {
	return e.Metadata[key]
}

// Decode converts opaque event data into T.
//
// Data that already has type T (or *T) is returned directly. Anything else,
// typically a map[string]any or raw JSON, goes through a JSON round trip.
func Decode[T any](data any) (T, error) {
	var out T

	switch d := data.(type) {
	case T:
		return d, nil
	case *T:
		if d == nil {
			return out, fmt.Errorf("decode %T: nil pointer", out)
		}
		return *d, nil
	case json.RawMessage:
		if err := json.Unmarshal(d, &out); err != nil {
			return out, fmt.Errorf("decode %T: %w", out, err)
		}
		return out, nil
	case []byte:
		if err := json.Unmarshal(d, &out); err != nil {
			return out, fmt.Errorf("decode %T: %w", out, err)
		}
		return out, nil
	case nil:
		return out, fmt.Errorf("decode %T: no data", out)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("decode %T: marshal %T: %w", out, data, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}
