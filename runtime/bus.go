// Package runtime handles notification propagation between the state tables
// and their listeners. It contains no business logic or domain rules.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"group-messaging/domain/event"
	"group-messaging/transport"
)

// EventSource accumulates events during a turn and hands them over once.
type EventSource interface {
	FlushEvents() []event.Event
}

type registration struct {
	id        uint64
	eventType event.Type // empty for catch-all listeners
	handler   event.Handler
	cancelled atomic.Bool
}

// Bus delivers events synchronously, in publication order, to the listeners
// registered for their type.
//
// Publishing while another publication is being delivered (from a listener
// or from another goroutine) queues the events behind the ones already
// pending: the goroutine draining the queue delivers them. Listeners may
// therefore publish or call back into the publisher without deadlocking.
type Bus struct {
	mu            sync.Mutex
	log           *slog.Logger
	nextID        uint64
	registrations []*registration
	queue         []event.Event
	draining      bool
}

func NewBus(log *slog.Logger) *Bus {
	return &Bus{log: log}
}

// Listen registers h for one event type.
func (b *Bus) Listen(t event.Type, h event.Handler) transport.Subscription {
	return b.register(t, h)
}

// ListenAll registers h for every event type.
func (b *Bus) ListenAll(h event.Handler) transport.Subscription {
	return b.register("", h)
}

func (b *Bus) register(t event.Type, h event.Handler) transport.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	r := &registration{id: b.nextID, eventType: t, handler: h}
	b.registrations = append(b.registrations, r)
	return subscription{bus: b, registration: r}
}

func (b *Bus) unregister(r *registration) {
	if r.cancelled.Swap(true) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, candidate := range b.registrations {
		if candidate.id == r.id {
			b.registrations = append(b.registrations[:i], b.registrations[i+1:]...)
			return
		}
	}
}

// Flush publishes whatever the source accumulated.
func (b *Bus) Flush(source EventSource) {
	if events := source.FlushEvents(); len(events) > 0 {
		b.Publish(events...)
	}
}

// Publish delivers events to their listeners. It returns once the events are
// delivered, or immediately when another caller is already draining the queue.
func (b *Bus) Publish(events ...event.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, events...)
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	for len(b.queue) > 0 {
		evt := b.queue[0]
		b.queue = b.queue[1:]
		targets := make([]*registration, 0, len(b.registrations))
		for _, r := range b.registrations {
			if r.eventType == "" || r.eventType == evt.Type {
				targets = append(targets, r)
			}
		}
		b.mu.Unlock()

		for _, r := range targets {
			if r.cancelled.Load() {
				continue
			}
			b.deliver(r, evt)
		}

		b.mu.Lock()
	}
	b.queue = nil
	b.draining = false
	b.mu.Unlock()
}

// deliver isolates the bus from a panicking listener.
func (b *Bus) deliver(r *registration, evt event.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error("Listener panicked", "event", evt.Type, "error", fmt.Sprint(rec))
		}
	}()
	r.handler.Handle(evt)
}

type subscription struct {
	bus          *Bus
	registration *registration
}

func (s subscription) Cancel() {
	s.bus.unregister(s.registration)
}
