package workers

import (
	"context"
	"log/slog"
	"time"

	"group-messaging/contract"
	"group-messaging/domain/event"
	"group-messaging/transport"
)

const DefaultFanoutBufferSize = 256

// EventFanout relays bus notifications to slow consumers (console, logs,
// projections) off the publishing turn.
//
// Delivery is best effort: when the buffer is full the notification is
// dropped for the sinks. Listeners registered on the bus directly are not
// affected. Each Consume call is bounded by the sink timeout.
type EventFanout struct {
	log          *slog.Logger
	events       chan event.Event
	sinks        []contract.EventSink
	sinkTimeout  time.Duration
	subscription transport.Subscription
}

// NewEventFanout listens to every notification of the bus until Close.
func NewEventFanout(log *slog.Logger, bus contract.IBus, bufferSize int, sinkTimeout time.Duration) *EventFanout {
	if bufferSize <= 0 {
		bufferSize = DefaultFanoutBufferSize
	}
	w := &EventFanout{
		log:         log,
		events:      make(chan event.Event, bufferSize),
		sinkTimeout: sinkTimeout,
	}
	w.subscription = bus.ListenAll(w)
	return w
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

// Handle enqueues without blocking the publisher.
func (w *EventFanout) Handle(e event.Event) {
	select {
	case w.events <- e:
	default:
		w.log.Warn("Fanout buffer full, notification dropped", "type", e.Type, "capacity", cap(w.events))
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case e := <-w.events:
			w.Fanout(ctx, e)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout hands the notification to every sink in turn.
func (w *EventFanout) Fanout(ctx context.Context, e event.Event) {
	for _, sink := range w.sinks {
		w.consume(ctx, sink, e)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, e event.Event) {
	sinkCtx := ctx
	if w.sinkTimeout > 0 {
		var cancel context.CancelFunc
		sinkCtx, cancel = context.WithTimeout(ctx, w.sinkTimeout)
		defer cancel()
	}
	if err := sink.Consume(sinkCtx, e); err != nil {
		w.log.Warn("Sink failed to consume notification", "type", e.Type, "error", err)
	}
}

// Close stops listening to the bus.
func (w *EventFanout) Close() {
	w.subscription.Cancel()
}
