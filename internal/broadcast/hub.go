// Package broadcast provides intra-device change notification: an
// in-process hub for subscribers in this process, a WebSocket server that
// fans events out to other local processes sharing the store, and a file
// watcher that picks up writes those peer processes made.
package broadcast

import (
	"sync"
	"time"

	"github.com/vcpc/helpdesk/internal/model"
)

// Event is a change notification: which collection changed and when.
type Event struct {
	Type      model.Collection `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
}

// Hub is an in-process publish/subscribe fan-out.
//
// Delivery is at-most-once per subscriber per Notify. Subscribers
// registered after a Notify see nothing for it; there is no replay, so a
// late subscriber must read current state from the store itself.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers a handler invoked once per notification.
// The returned function cancels the subscription.
func (h *Hub) Subscribe(handler func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = handler

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Notify publishes a change event for the given collection to every
// current subscriber. Handlers run synchronously in the caller's
// goroutine; a handler may therefore observe the event before the
// originating write is flushed to disk.
func (h *Hub) Notify(tag model.Collection) {
	h.Publish(Event{Type: tag, Timestamp: time.Now()})
}

// Publish delivers a fully-formed event to every current subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	handlers := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
