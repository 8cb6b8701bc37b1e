/*
Package flowbus provides a process-local publish/subscribe bus.

# Overview

A Bus routes published events to subscriptions by topic. Delivery is
synchronous: Publish runs every matching listener on the caller's goroutine,
in registration order, before it returns. Listeners that need to do slow work
do it elsewhere and report back with a fresh Publish.

The workflow subpackage layers an INIT/SUBMIT/STATE.CHANGE protocol on top
of the bus.

# Basic Usage

	bus := flowbus.New(flowbus.WithMaxHistorySize(200))
	defer bus.Close()

	bus.Subscribe("audit", "USER.*", func(ctx context.Context, d flowbus.Delivery) error {
	    log.Printf("%s: %v", d.Topic, d.Data)
	    return nil
	})

	bus.Publish(ctx, "USER.LOGIN", map[string]any{"user": "ada"})

Subscription ids are chosen by the caller and must be unique. Subscribing
twice with the same id keeps the first subscription and logs a warning.

# Topics

Topics are strings, conventionally dot-separated uppercase segments. A
pattern without '*' matches one topic exactly and case-sensitively. A
pattern with '*' matches case-insensitively, with '*' absorbing any run of
characters across segments. See package topic.

# Faults

A listener that returns an error or panics does not affect other listeners
or the publisher. Faults are logged, counted, and passed to the optional
WithFaultHandler hook.

# Request/Reply

Request publishes a *RequestPayload carrying a one-shot ReplyChannel:

	bus.Subscribe("pricer", "PRICE.QUOTE", func(ctx context.Context, d flowbus.Delivery) error {
	    if req, ok := flowbus.RequestFrom(d.Event); ok {
	        req.Reply.Reply(quote(req.Data))
	    }
	    return nil
	})

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	price, err := bus.Request(ctx, "PRICE.QUOTE", sku).Wait(ctx)

The bus imposes no timeout; a request nobody answers waits until ctx ends.

# Scoped Subscriptions

Scope returns a Disposer that hosts attach to their own lifecycle:

	dispose := bus.Scope("panel-42", "ORDER.*", onOrder)
	defer dispose()

# History

The bus keeps the most recent events in a bounded ring for diagnostics
(History, ClearHistory). WithJournal additionally mirrors them into a
history.Journal such as history.SQLiteJournal. Neither is ever replayed to
subscribers.
*/
package flowbus
