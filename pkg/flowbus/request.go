package flowbus

import (
	"context"
	"sync"
)

// ReplyChannel is a one-shot, single-value completion object. The first
// Reply or Complete wins; later attempts are ignored.
type ReplyChannel struct {
	once     sync.Once
	done     chan struct{}
	value    any
	hasValue bool
}

// NewReplyChannel creates an unresolved reply channel.
func NewReplyChannel() *ReplyChannel {
	return &ReplyChannel{done: make(chan struct{})}
}

// Reply resolves the channel with v. It returns false if the channel was
// already resolved.
func (r *ReplyChannel) Reply(v any) bool {
	resolved := false
	r.once.Do(func() {
		r.value = v
		r.hasValue = true
		resolved = true
		close(r.done)
	})
	return resolved
}

// Complete resolves the channel without a value. It returns false if the
// channel was already resolved.
func (r *ReplyChannel) Complete() bool {
	resolved := false
	r.once.Do(func() {
		resolved = true
		close(r.done)
	})
	return resolved
}

// Done is closed once the channel resolves.
func (r *ReplyChannel) Done() <-chan struct{} {
	return r.done
}

// RequestPayload is the data of an event published by Bus.Request.
type RequestPayload struct {
	// Data is the caller's request body.
	Data any
	// Reply resolves the caller's Handle. Any listener may use it, once.
	Reply *ReplyChannel
}

// RequestFrom extracts the request payload from an event published by
// Bus.Request.
func RequestFrom(evt Event) (*RequestPayload, bool) {
	req, ok := evt.Data.(*RequestPayload)
	return req, ok && req != nil && req.Reply != nil
}

// Handle is the caller's side of a request.
type Handle struct {
	eventID string
	reply   *ReplyChannel
	err     error
}

// EventID returns the ID of the published request event.
func (h *Handle) EventID() string {
	return h.eventID
}

// Done is closed once a reply or completion arrives.
func (h *Handle) Done() <-chan struct{} {
	return h.reply.Done()
}

// Value returns the reply value and whether one was provided. Both are zero
// until the handle resolves, and after a value-less Complete.
func (h *Handle) Value() (any, bool) {
	select {
	case <-h.reply.done:
		return h.reply.value, h.reply.hasValue
	default:
		return nil, false
	}
}

// Wait blocks until the request resolves or ctx ends. There is no built-in
// timeout: without a deadline on ctx, an unanswered request waits forever.
// A request made on a closed bus returns ErrBusClosed at once.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.reply.done:
		if h.err != nil {
			return nil, h.err
		}
		return h.reply.value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Request publishes data on topic wrapped in a *RequestPayload carrying a
// fresh reply channel, and returns a handle for the reply.
//
// Listeners usually answer synchronously, in which case the handle is
// already resolved when Request returns. A listener may also keep the reply
// channel and answer later from another goroutine.
func (b *Bus) Request(ctx context.Context, topicName string, data any, opts ...PublishOption) *Handle {
	reply := NewReplyChannel()
	if b.closed.Load() {
		reply.Complete()
		return &Handle{reply: reply, err: ErrBusClosed}
	}
	evt := b.publish(ctx, topicName, &RequestPayload{Data: data, Reply: reply}, opts)
	return &Handle{eventID: evt.ID, reply: reply}
}
