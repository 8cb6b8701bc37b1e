package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteJournal appends records to a SQLite table.
// It is write-mostly: the bus never reads it back.
type SQLiteJournal struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteJournal opens (or creates) a journal database.
// The path should be a file path or ":memory:" for testing.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			data BLOB,
			metadata BLOB
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_topic
		ON events(topic)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Append implements Journal.
func (j *SQLiteJournal) Append(rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	_, err := j.db.Exec(`
		INSERT INTO events (event_id, topic, timestamp, data, metadata)
		VALUES (?, ?, ?, ?, ?)
	`, rec.EventID, rec.Topic, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Data, rec.Metadata)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Recent implements Journal.
func (j *SQLiteJournal) Recent(topic string, limit int) ([]Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	// Newest `limit` rows, flipped back to insertion order.
	rows, err := j.db.Query(`
		SELECT event_id, topic, timestamp, data, metadata FROM (
			SELECT seq, event_id, topic, timestamp, data, metadata
			FROM events
			WHERE ? = '' OR topic = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`, topic, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var timestamp string
		if err := rows.Scan(&rec.EventID, &rec.Topic, &timestamp, &rec.Data, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// Close implements Journal.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	j.closed = true
	return j.db.Close()
}
