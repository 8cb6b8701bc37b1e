package history

import (
	"errors"
	"time"
)

// Record is the journal form of a published event.
type Record struct {
	EventID   string
	Topic     string
	Timestamp time.Time
	Data      []byte // JSON-encoded payload, nil if not encodable
	Metadata  []byte // JSON-encoded metadata, nil if absent
}

// Journal mirrors recorded events somewhere outside the process for
// offline inspection. Implementations must be safe for concurrent use.
type Journal interface {
	// Append stores one record.
	Append(rec Record) error

	// Recent returns up to limit records for a topic, oldest first.
	// An empty topic returns records for every topic.
	Recent(topic string, limit int) ([]Record, error)

	// Close releases any resources.
	Close() error
}

// ErrJournalClosed indicates the journal has been closed.
var ErrJournalClosed = errors.New("journal closed")

// NoopJournal discards everything.
type NoopJournal struct{}

// Compile-time interface check.
var _ Journal = NoopJournal{}

// Append does nothing.
func (NoopJournal) Append(Record) error { return nil }

// Recent returns nothing.
func (NoopJournal) Recent(string, int) ([]Record, error) { return nil, nil }

// Close does nothing.
func (NoopJournal) Close() error { return nil }
