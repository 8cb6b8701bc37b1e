package topic

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Entry describes the payload carried on one topic literal.
type Entry struct {
	// Topic is the exact topic (wildcards are not allowed).
	Topic string

	// Description explains what publishing on the topic means.
	Description string

	// Payload is a prototype value of the payload type, e.g. OrderPlaced{}.
	// Nil means the payload is intentionally untyped.
	Payload any

	// Tags enable grouping in generated documentation.
	Tags []string
}

// PayloadType returns the reflected payload type, or nil when untyped.
func (e Entry) PayloadType() reflect.Type {
	if e.Payload == nil {
		return nil
	}
	return reflect.TypeOf(e.Payload)
}

// Accepts reports whether data has the entry's payload type.
// Untyped entries accept anything.
func (e Entry) Accepts(data any) bool {
	want := e.PayloadType()
	if want == nil {
		return true
	}
	if data == nil {
		return false
	}
	got := reflect.TypeOf(data)
	if got == want {
		return true
	}
	return got.Kind() == reflect.Pointer && got.Elem() == want
}

// Catalog maps topic literals to their payload descriptions.
// It lives at the application boundary; the bus never reads it.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]Entry),
	}
}

// Register adds an entry. Registering the same topic twice is an error.
func (c *Catalog) Register(entry Entry) error {
	if entry.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if Compile(entry.Topic).IsWildcard() {
		return fmt.Errorf("topic %q: wildcard topics cannot be cataloged", entry.Topic)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.Topic]; exists {
		return fmt.Errorf("topic %q already registered", entry.Topic)
	}
	c.entries[entry.Topic] = entry
	return nil
}

// MustRegister adds an entry, panicking on error.
func (c *Catalog) MustRegister(entry Entry) {
	if err := c.Register(entry); err != nil {
		panic(fmt.Sprintf("failed to register topic: %v", err))
	}
}

// Get returns the entry for a topic.
func (c *Catalog) Get(topic string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[topic]
	return entry, ok
}

// Topics returns every registered topic in lexical order.
func (c *Catalog) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	topics := make([]string, 0, len(c.entries))
	for t := range c.entries {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Matching returns the entries a subscription pattern would receive.
func (c *Catalog) Matching(pattern string) []Entry {
	p := Compile(pattern)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []Entry
	for t, entry := range c.entries {
		if p.Match(t) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Topic < matched[j].Topic })
	return matched
}

// ListByTag returns all entries with a given tag.
func (c *Catalog) ListByTag(tag string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []Entry
	for _, entry := range c.entries {
		for _, t := range entry.Tags {
			if t == tag {
				entries = append(entries, entry)
				break
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Topic < entries[j].Topic })
	return entries
}
