package flowbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/flowbus/pkg/flowbus/history"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
	"github.com/randalmurphal/flowbus/pkg/flowbus/topic"
)

// Listener receives events for one subscription. Delivery is synchronous on
// the publisher's goroutine, so listeners must not block. A returned error
// or a panic is reported and swallowed; delivery continues with the next
// listener.
type Listener func(ctx context.Context, d Delivery) error

// Delivery is what a listener receives: the event plus the receiving
// subscription's identity and attached data.
type Delivery struct {
	Event

	SubscriptionID string
	Closure        any
	CustomData     any
}

// subscription is a registry entry.
type subscription struct {
	id         string
	pattern    topic.Pattern
	listener   Listener
	closure    any
	customData any
	owner      *scopeOwner // set for subscriptions created by Scope
}

// Bus is a process-local publish/subscribe dispatcher.
//
// Subscriptions are kept in registration order and matched against each
// published topic. Matching listeners run synchronously, in registration
// order, against a snapshot taken when Publish is called; listeners may
// publish, subscribe, or unsubscribe reentrantly. The registry lock is never
// held while a listener runs, so a Bus is also safe for concurrent use.
type Bus struct {
	config busConfig

	mu     sync.RWMutex
	subs   map[string]*subscription
	order  []*subscription
	closed atomic.Bool

	history *history.Ring[Event]
}

// New creates a bus.
func New(opts ...Option) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Bus{
		config:  cfg,
		subs:    make(map[string]*subscription),
		history: history.NewRing(cfg.maxHistorySize, func(e Event) string { return e.Topic }),
	}
}

// Subscribe registers listener under id for topics matching pattern.
//
// If id is already registered the new subscription is discarded and the
// existing one is kept; the conflict is logged, not returned.
func (b *Bus) Subscribe(id, pattern string, listener Listener, opts ...SubscribeOption) {
	if b.closed.Load() {
		b.config.logger.Debug("subscribe on closed bus ignored", slog.String("subscription_id", id))
		return
	}
	if listener == nil {
		b.config.logger.Warn("subscribe with nil listener ignored", slog.String("subscription_id", id))
		return
	}

	sub := &subscription{
		id:       id,
		pattern:  topic.Compile(pattern),
		listener: listener,
	}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	if _, exists := b.subs[id]; exists {
		b.mu.Unlock()
		observability.LogDuplicateSubscription(b.config.logger, id, pattern, ErrDuplicateSubscription)
		return
	}
	b.subs[id] = sub
	b.order = append(b.order, sub)
	b.mu.Unlock()
}

// Unsubscribe removes the subscription registered under id.
// Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	b.remove(sub)
}

// remove drops sub from the registry. Callers hold b.mu.
func (b *Bus) remove(sub *subscription) {
	delete(b.subs, sub.id)

	// Build a fresh slice so snapshots handed out earlier stay intact.
	order := make([]*subscription, 0, len(b.order)-1)
	for _, s := range b.order {
		if s != sub {
			order = append(order, s)
		}
	}
	b.order = order
}

// UnsubscribeAll removes every subscription.
func (b *Bus) UnsubscribeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[string]*subscription)
	b.order = nil
}

// Has returns true if a subscription is registered under id.
func (b *Bus) Has(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subs[id]
	return ok
}

// ActiveSubscriptionIDs returns the registered ids in registration order.
func (b *Bus) ActiveSubscriptionIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.order))
	for _, s := range b.order {
		ids = append(ids, s.id)
	}
	return ids
}

// Publish builds an event, records it in history, and delivers it to every
// subscription whose pattern matches topic.
//
// Listener errors and panics are isolated: they are logged and counted but
// never stop delivery to later listeners and never reach the caller.
func (b *Bus) Publish(ctx context.Context, topicName string, data any, opts ...PublishOption) {
	b.publish(ctx, topicName, data, opts)
}

func (b *Bus) publish(ctx context.Context, topicName string, data any, opts []PublishOption) Event {
	var pc publishConfig
	for _, opt := range opts {
		opt(&pc)
	}

	evt := newEvent(topicName, data, pc.metadata)

	if b.closed.Load() {
		b.config.logger.Debug("publish on closed bus ignored", slog.String("topic", topicName))
		return evt
	}

	b.record(evt)

	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.order))
	for _, s := range b.order {
		if s.pattern.Match(topicName) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	ctx, span := b.config.spans.StartPublishSpan(ctx, topicName, evt.ID)
	faults := 0
	for _, s := range targets {
		if err := b.deliver(ctx, s, evt); err != nil {
			faults++
		}
	}

	var spanErr error
	if faults > 0 {
		spanErr = fmt.Errorf("%d of %d listeners failed", faults, len(targets))
	}
	b.config.spans.EndSpanWithError(span, spanErr)

	b.config.metrics.RecordPublish(ctx, topicName, len(targets))
	observability.LogPublish(b.config.logger, topicName, evt.ID, len(targets))

	return evt
}

// deliver invokes one listener, converting errors and panics into reported
// faults.
func (b *Bus) deliver(ctx context.Context, s *subscription, evt Event) (err error) {
	// Each listener gets its own metadata map so none can alter what later
	// listeners or the history see.
	evt.Metadata = maps.Clone(evt.Metadata)
	d := Delivery{
		Event:          evt,
		SubscriptionID: s.id,
		Closure:        s.closure,
		CustomData:     s.customData,
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				SubscriptionID: s.id,
				Topic:          evt.Topic,
				Value:          r,
				Stack:          string(debug.Stack()),
			}
			b.reportFault(ctx, d, err, true)
		}
	}()

	if lerr := s.listener(ctx, d); lerr != nil {
		err = &ListenerError{SubscriptionID: s.id, Topic: evt.Topic, Err: lerr}
		b.reportFault(ctx, d, err, false)
	}
	return err
}

func (b *Bus) reportFault(ctx context.Context, d Delivery, err error, panicked bool) {
	observability.LogListenerFault(b.config.logger, d.SubscriptionID, d.Topic, err)
	b.config.metrics.RecordListenerFault(ctx, d.Topic, panicked)

	if b.config.onFault == nil {
		return
	}
	// A faulty hook must not break delivery either.
	defer func() {
		if r := recover(); r != nil {
			b.config.logger.Error("fault handler panicked", slog.Any("panic", r))
		}
	}()
	b.config.onFault(d, err)
}

// record appends evt to the history ring and the journal.
func (b *Bus) record(evt Event) {
	b.history.Record(evt)

	if _, noop := b.config.journal.(history.NoopJournal); noop {
		return
	}

	rec := history.Record{
		EventID:   evt.ID,
		Topic:     evt.Topic,
		Timestamp: evt.Timestamp,
	}
	// Payloads are opaque; anything JSON can't encode is journaled without data.
	if raw, err := json.Marshal(evt.Data); err == nil {
		rec.Data = raw
	}
	if len(evt.Metadata) > 0 {
		if raw, err := json.Marshal(evt.Metadata); err == nil {
			rec.Metadata = raw
		}
	}
	if err := b.config.journal.Append(rec); err != nil {
		observability.LogJournalError(b.config.logger, evt.Topic, err)
	}
}

// History returns retained events in publish order. An empty topic returns
// every retained event; otherwise only events with exactly that topic.
// The returned events are copies.
func (b *Bus) History(topicName string) []Event {
	events := b.history.Query(topicName)
	for i := range events {
		events[i].Metadata = maps.Clone(events[i].Metadata)
	}
	return events
}

// ClearHistory drops every retained event.
func (b *Bus) ClearHistory() {
	b.history.Clear()
}

// Close tears the bus down: every subscription is dropped, history is
// cleared, and the journal is closed. Later Subscribe and Publish calls are
// ignored and later requests fail with ErrBusClosed. Close is idempotent.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.UnsubscribeAll()
	b.history.Clear()

	if err := b.config.journal.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}
