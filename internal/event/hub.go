// Package event provides a typed publish/subscribe hub used for in-process
// signals: entity lifecycle events, daemon broadcasts, and property-change
// notifications.
package event

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Token identifies a single subscription. It is opaque to callers and is
// only useful as an argument to Unsubscribe.
type Token string

// Handler receives the payload passed to Emit.
type Handler func(payload any)

type subscription struct {
	token   Token
	handler Handler
}

// Hub is a per-signal-name publish/subscribe channel. Handlers for the same
// subscriber are invoked in registration order; no ordering is guaranteed
// across distinct subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]subscription
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for the named signal and returns a token
// usable with Unsubscribe.
func (h *Hub) Subscribe(signal string, handler Handler) Token {
	token := Token(ulid.MustNew(ulid.Now(), rand.Reader).String())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[signal] = append(h.subs[signal], subscription{token: token, handler: handler})
	return token
}

// Unsubscribe removes the subscription identified by token. Unknown tokens
// are ignored.
func (h *Hub) Unsubscribe(token Token) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for signal, subs := range h.subs {
		for i, sub := range subs {
			if sub.token == token {
				h.subs[signal] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit invokes every handler registered for the named signal with the given
// payload. Emission is synchronous on the calling goroutine.
func (h *Hub) Emit(signal string, payload any) {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs[signal]))
	copy(subs, h.subs[signal])
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(payload)
	}
}

// SubscriberCount returns the number of active subscriptions for a signal.
func (h *Hub) SubscriberCount(signal string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[signal])
}
