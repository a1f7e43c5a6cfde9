// Package notify is a small in-process toast bus. Publishers never block on
// subscribers beyond the handler call itself.
package notify

import (
	"sync"
	"time"
)

// Kind classifies a toast
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Event is one toast
type Event struct {
	Kind    Kind
	Message string
	At      time.Time
}

// Publisher is what producers of toasts depend on
type Publisher interface {
	Publish(Event)
}

// Bus fans events out to subscribers in subscription order
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(Event)
	order    []int
}

// Default is the process-wide bus
var Default = NewBus()

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(Event))}
}

// Subscribe registers handler and returns a func that removes it
func (b *Bus) Subscribe(handler func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to every current subscriber. A zero At is stamped with
// the current time.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
