package flowbus

import "sync"

// Disposer releases a scoped subscription. Calling it more than once is safe.
type Disposer func()

// scopeOwner tags the subscription a Scope call created. It is not
// zero-size so distinct owners never share an address.
type scopeOwner struct {
	id string
}

func withScopeOwner(owner *scopeOwner) SubscribeOption {
	return func(s *subscription) {
		s.owner = owner
	}
}

// Scope subscribes and returns a disposer that unsubscribes. Hosts wire the
// disposer into their own cleanup hook (a component unmount, the end of a
// request, t.Cleanup).
//
// The disposer only removes the subscription this call created: if id was
// already taken, Subscribe keeps the existing entry and disposing is a no-op.
func (b *Bus) Scope(id, pattern string, listener Listener, opts ...SubscribeOption) Disposer {
	owner := &scopeOwner{id: id}
	scoped := make([]SubscribeOption, 0, len(opts)+1)
	scoped = append(scoped, opts...)
	scoped = append(scoped, withScopeOwner(owner))
	b.Subscribe(id, pattern, listener, scoped...)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribeOwned(id, owner)
		})
	}
}

func (b *Bus) unsubscribeOwned(id string, owner *scopeOwner) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok && sub.owner == owner {
		b.remove(sub)
	}
}
