package flowbus

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrDuplicateSubscription indicates Subscribe was called with an ID that
	// is already registered. It is logged, never returned to the caller.
	ErrDuplicateSubscription = errors.New("subscription id already registered")

	// ErrBusClosed is returned by Handle.Wait for requests made after Close.
	ErrBusClosed = errors.New("bus closed")
)

// ListenerError wraps an error returned by a listener.
type ListenerError struct {
	// SubscriptionID identifies the failing subscription.
	SubscriptionID string
	// Topic is the topic of the event being delivered.
	Topic string
	// Err is the error the listener returned.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s on %s: %v", e.SubscriptionID, e.Topic, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised by a listener.
type PanicError struct {
	// SubscriptionID identifies the panicking subscription.
	SubscriptionID string
	// Topic is the topic of the event being delivered.
	Topic string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener %s on %s panicked: %v", e.SubscriptionID, e.Topic, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
