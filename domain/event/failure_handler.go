package event

import (
	"log/slog"

	"group-messaging/errors"
)

// FailureHandler logs the cause carried by failure notifications.
type FailureHandler struct {
	log *slog.Logger
}

func NewFailureHandler(log *slog.Logger) *FailureHandler {
	return &FailureHandler{log: log}
}

func (h *FailureHandler) Handle(event Event) {
	switch event.Type {
	case LoginError, LogoutFailed, GroupUnjoined, BuddiesError:
		payload, ok := event.Payload.(Failure)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.log.Warn("Operation failed", "type", event.Type, "error", payload.Err)
	}
}
