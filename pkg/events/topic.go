package events

// Topic is a single typed event channel. The zero value is usable.
type Topic[T any] struct {
	name     string
	handlers []*handler[T]
}

type handler[T any] struct {
	fn   func(T)
	dead bool
}

// Name returns the event name, e.g. "node:over".
func (t *Topic[T]) Name() string { return t.name }

// Len returns the number of live subscriptions.
func (t *Topic[T]) Len() int { return len(t.handlers) }

// Subscribe registers fn and returns a handle that removes it again.
// A handler subscribed while the topic is dispatching is not called for
// the event in flight.
func (t *Topic[T]) Subscribe(fn func(T)) Subscription {
	h := &handler[T]{fn: fn}
	hs := make([]*handler[T], len(t.handlers), len(t.handlers)+1)
	copy(hs, t.handlers)
	t.handlers = append(hs, h)
	return Subscription{cancel: func() { t.remove(h) }}
}

// Publish delivers v to every handler in subscription order.
// A handler removed during dispatch is skipped for the rest of it.
func (t *Topic[T]) Publish(v T) {
	for _, h := range t.handlers {
		if h.dead {
			continue
		}
		h.fn(v)
	}
}

func (t *Topic[T]) remove(h *handler[T]) {
	if h.dead {
		return
	}
	h.dead = true
	hs := make([]*handler[T], 0, len(t.handlers))
	for _, x := range t.handlers {
		if x != h {
			hs = append(hs, x)
		}
	}
	t.handlers = hs
}

func (t *Topic[T]) reset() {
	for _, h := range t.handlers {
		h.dead = true
	}
	t.handlers = nil
}

// Subscription removes a handler from its topic.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the handler. Calling it more than once, or on the
// zero Subscription, is a no-op.
func (s Subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Group collects subscriptions so a component can detach all of them at
// teardown.
type Group []Subscription

// Add appends s to the group.
func (g *Group) Add(s Subscription) { *g = append(*g, s) }

// Unsubscribe detaches every subscription and empties the group.
func (g *Group) Unsubscribe() {
	for _, s := range *g {
		s.Unsubscribe()
	}
	*g = nil
}
