package sink

import (
	"context"
	"log/slog"

	"group-messaging/domain/event"
)

// LogSink writes every notification to the structured log.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(ctx context.Context, e event.Event) error {
	level := slog.LevelDebug
	if _, failed := e.Payload.(event.Failure); failed || e.Type == event.MessageFailed {
		level = slog.LevelWarn
	}
	s.log.Log(ctx, level, "Notification", "type", e.Type, "payload", e.Payload, "at", e.OccurredAt)
	return nil
}
