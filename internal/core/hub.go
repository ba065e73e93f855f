package core

import "sync"

const defaultSubscriptionBuffer = 64

// Subscription is one subscriber's feed of broadcasts. The channel is closed
// when the subscription is removed from the hub.
type Subscription struct {
	ch chan Broadcast
}

// C returns the channel broadcasts are delivered on.
func (s *Subscription) C() <-chan Broadcast {
	return s.ch
}

// Hub fans every published broadcast out to all current subscribers in
// publication order. Publish never blocks: a subscriber that stops draining
// its buffer loses its own oldest entries, nobody else is affected.
//
// Hubs are plain values handed to whoever needs one, so tests can run each
// case against an isolated instance.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer broadcasts.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriptionBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. It only receives broadcasts
// published after this call returns.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan Broadcast, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish delivers a broadcast to every current subscriber. When a
// subscriber's buffer is full its oldest entry is evicted first, so the
// publisher never waits on a slow consumer.
func (h *Hub) Publish(b Broadcast) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- b:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- b:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
