package event

import (
	"log/slog"
	"sync"
)

// DeliveryHandler counts message deliveries: sent, failed and received.
type DeliveryHandler struct {
	log    *slog.Logger
	mu     sync.Mutex
	counts map[Type]int
}

func NewDeliveryHandler(log *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{log: log, counts: make(map[Type]int)}
}

func (h *DeliveryHandler) Handle(event Event) {
	switch event.Type {
	case MessageSent, MessageFailed, MessageReceived:
		h.mu.Lock()
		h.counts[event.Type]++
		total := h.counts[event.Type]
		h.mu.Unlock()
		h.log.Debug("Message delivery", "type", event.Type, "total", total)
	}
}

func (h *DeliveryHandler) Count(t Type) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[t]
}
