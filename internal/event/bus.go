package event

import "sync"

// Handler receives published events.
type Handler func(Event)

// Subscription identifies a registered handler for later removal.
type Subscription struct {
	id   uint64
	kind Kind
	all  bool
}

// Bus delivers events to subscribers synchronously, in subscription
// order. Publish on a nil Bus is a no-op so components can run
// unwired in tests.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
}

type subscriber struct {
	id      uint64
	kind    Kind
	all     bool
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every event kind.
func (b *Bus) Subscribe(h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, all: true, handler: h})
	return Subscription{id: b.nextID, all: true}
}

// SubscribeKind registers a handler for a single event kind.
func (b *Bus) SubscribeKind(k Kind, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, kind: k, handler: h})
	return Subscription{id: b.nextID, kind: k}
}

// Unsubscribe removes a previously registered handler. Unknown
// subscriptions are ignored.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == s.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to matching subscribers in subscription order.
// Handlers run on the caller's goroutine.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.all || sub.kind == e.Kind() {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		h(e)
	}
}

// SubscriberCount returns the number of registered handlers.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
