// Package watch implements the change-notification hub. Every successful
// mutation marks its collection changed; subscribers then re-deliver the
// full current collection, with no diffing contract.
package watch

import "sync"

// Collection names carried by change notifications.
const (
	CollectionUsers = "users"
	CollectionItems = "items"
	CollectionEvent = "event"
)

// Hub fans collection-changed notifications out to registered subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan string
	next int
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan string)}
}

// Subscribe registers a new subscriber and returns its notification channel
// plus a cancel function. The channel is closed on cancel.
func (h *Hub) Subscribe() (<-chan string, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan string, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Broadcast notifies every subscriber that the named collection changed.
// A subscriber whose buffer is full misses this notification; readers
// always fetch the full current collection, so the next one makes them
// whole again.
func (h *Hub) Broadcast(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- collection:
		default:
		}
	}
}
