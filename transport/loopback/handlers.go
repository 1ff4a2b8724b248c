package loopback

import (
	"slices"
	"sync"

	"group-messaging/transport"
)

type entry[E any] struct {
	id uint64
	fn func(E)
}

// handlers is an ordered set of callbacks. fire never holds the lock while
// calling back, so a callback may register or cancel handlers.
type handlers[E any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entry[E]
}

func (h *handlers[E]) add(fn func(E)) transport.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.entries = append(h.entries, entry[E]{id: id, fn: fn})
	return &subscription{cancel: func() { h.remove(id) }}
}

func (h *handlers[E]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = slices.DeleteFunc(h.entries, func(e entry[E]) bool {
		return e.id == id
	})
}

func (h *handlers[E]) fire(e E) {
	h.mu.Lock()
	snapshot := slices.Clone(h.entries)
	h.mu.Unlock()
	for _, en := range snapshot {
		en.fn(e)
	}
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Cancel() {
	s.once.Do(s.cancel)
}
