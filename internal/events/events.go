// Package events carries identity-change notifications between the
// components that observe them and the caches that must react. Subscribers
// never share mutable state beyond the notifier's own handler list.
package events

import (
	"sync"
	"time"
)

// Type identifies an identity-change event
type Type string

const (
	// IdentityTouched fires when a user's identity state changes
	// (re-login, consent change, role update)
	IdentityTouched Type = "identity.touched"
	// IdentityDeleted fires when a user is removed
	IdentityDeleted Type = "identity.deleted"
)

// Event is an identity-change notification. TokenDigest is the SHA-256
// digest of the affected bearer token when the emitter knows it; the raw
// token never travels through the bus.
type Event struct {
	Type        Type      `json:"type"`
	Subject     string    `json:"subject,omitempty"`
	TokenDigest string    `json:"token_digest,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Handler is a function that handles identity events
type Handler func(Event)

// Notifier is an in-process pub/sub dispatcher with asynchronous delivery
type Notifier struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	queue    chan Event
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewNotifier creates a notifier and starts its dispatch loop
func NewNotifier() *Notifier {
	n := &Notifier{
		handlers: make(map[Type][]Handler),
		queue:    make(chan Event, 100),
		done:     make(chan struct{}),
	}
	n.wg.Add(1)
	go n.dispatch()
	return n
}

// Subscribe registers a handler for an event type
func (n *Notifier) Subscribe(eventType Type, handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[eventType] = append(n.handlers[eventType], handler)
}

// Publish queues an event for asynchronous delivery; a full queue drops
// the event rather than blocking the publisher
func (n *Notifier) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case n.queue <- event:
	default:
	}
}

// PublishSync delivers an event to all handlers before returning
func (n *Notifier) PublishSync(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	n.deliver(event)
}

// Close stops the dispatch loop after draining queued events
func (n *Notifier) Close() {
	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) dispatch() {
	defer n.wg.Done()
	for {
		select {
		case event := <-n.queue:
			n.deliver(event)
		case <-n.done:
			// Drain remaining events before exiting
			for {
				select {
				case event := <-n.queue:
					n.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(event Event) {
	n.mu.RLock()
	handlers := make([]Handler, len(n.handlers[event.Type]))
	copy(handlers, n.handlers[event.Type])
	n.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
