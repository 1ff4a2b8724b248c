// Package loopback is an in-process transport. Every client created by the
// same Hub can reach the others, which makes it suitable for tests and for
// running the engine without a network.
//
// Callbacks are invoked synchronously on the caller's goroutine, never while
// a hub or client lock is held.
package loopback

import (
	"log/slog"
	"sync"
	"time"

	"group-messaging/transport"

	"github.com/google/uuid"
)

// PresenceOffline is reported for endpoints that are not connected.
const PresenceOffline = "offline"

type Hub struct {
	mu       sync.Mutex
	log      *slog.Logger
	registry *Registry
	watchers map[string]*handlers[transport.PresenceEvent] // map endpoint -> presence listeners
	now      func() time.Time
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:      log,
		registry: NewRegistry(),
		watchers: make(map[string]*handlers[transport.PresenceEvent]),
		now:      time.Now,
	}
}

// NewClient returns a disconnected client bound to this hub.
func (h *Hub) NewClient(opts transport.ClientOptions) (transport.Client, error) {
	return h.Client(opts), nil
}

// Client is NewClient without the interface conversion.
func (h *Hub) Client(opts transport.ClientOptions) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.New(),
		opts:   opts,
		groups: make(map[string]*Group),
	}
	if opts.DevelopmentMode {
		h.log.Debug("Loopback client created", "client_id", client.id, "app_id", opts.AppID)
	}
	return client
}

// presenceOf returns the presence of a connected endpoint or PresenceOffline.
func (h *Hub) presenceOf(endpointID string) string {
	client, ok := h.registry.Session(endpointID)
	if !ok {
		return PresenceOffline
	}
	return client.Presence()
}

func (h *Hub) watch(endpointID string, fn transport.PresenceHandler) transport.Subscription {
	h.mu.Lock()
	w, ok := h.watchers[endpointID]
	if !ok {
		w = &handlers[transport.PresenceEvent]{}
		h.watchers[endpointID] = w
	}
	h.mu.Unlock()
	return w.add(fn)
}

func (h *Hub) announce(endpointID, presence string) {
	h.mu.Lock()
	w, ok := h.watchers[endpointID]
	h.mu.Unlock()
	if !ok {
		return
	}
	w.fire(transport.PresenceEvent{Presence: presence})
}

// deliver hands a message to a connected endpoint.
func (h *Hub) deliver(to string, e transport.MessageEvent) bool {
	client, ok := h.registry.Session(to)
	if !ok {
		return false
	}
	client.messages.fire(e)
	return true
}

// endpoint is a view of a remote endpoint from the perspective of a client.
type endpoint struct {
	hub  *Hub
	from *Client
	id   string
}

func (e endpoint) ID() string { return e.id }

func (e endpoint) Presence() string { return e.hub.presenceOf(e.id) }

func (e endpoint) EndpointID() string { return e.id }

func (e endpoint) Endpoint() transport.Endpoint { return e }

func (e endpoint) OnPresence(h transport.PresenceHandler) transport.Subscription {
	return e.hub.watch(e.id, h)
}
