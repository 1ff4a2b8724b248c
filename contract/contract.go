//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"group-messaging/domain/event"
	"group-messaging/transport"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes notifications outside of the publishing turn
// (rendering, logs, projections).
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IBus is the observer registry shared by the state tables and their listeners.
type IBus interface {
	Listen(t event.Type, h event.Handler) transport.Subscription
	ListenAll(h event.Handler) transport.Subscription
	Publish(events ...event.Event)
}
