package runtime

import (
	"log/slog"
	"sync"
	"testing"

	"group-messaging/domain/event"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	types []event.Type
}

func (r *recorder) Handle(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
}

func (r *recorder) received() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Type(nil), r.types...)
}

type outbox struct {
	events []event.Event
}

func (o *outbox) FlushEvents() []event.Event {
	events := o.events
	o.events = nil
	return events
}

func newTestBus() *Bus {
	return NewBus(logs.GetLoggerFromLevel(slog.LevelDebug))
}

func TestBus_Listen_Filters_By_Type(t *testing.T) {
	req := require.New(t)
	bus := newTestBus()
	tabs := &recorder{}
	all := &recorder{}

	// Given one listener per type and one for everything
	bus.Listen(event.TabsUpdated, tabs)
	bus.ListenAll(all)

	// When publishing two notifications
	bus.Publish(event.New(event.TabOpened, nil), event.New(event.TabsUpdated, nil))

	// Then
	req.Equal([]event.Type{event.TabsUpdated}, tabs.received())
	req.Equal([]event.Type{event.TabOpened, event.TabsUpdated}, all.received())
}

func TestBus_Cancel_Stops_Delivery(t *testing.T) {
	req := require.New(t)
	bus := newTestBus()
	listener := &recorder{}
	subscription := bus.ListenAll(listener)

	bus.Publish(event.New(event.InitSuccess, nil))
	subscription.Cancel()
	subscription.Cancel()
	bus.Publish(event.New(event.LoginSuccess, nil))

	req.Equal([]event.Type{event.InitSuccess}, listener.received())
	req.Empty(bus.registrations)
}

func TestBus_Reentrant_Publish_Keeps_Fifo_Order(t *testing.T) {
	req := require.New(t)
	bus := newTestBus()
	listener := &recorder{}

	// Given a listener publishing while handling
	bus.Listen(event.LoginSuccess, event.HandlerFunc(func(e event.Event) {
		bus.Publish(event.New(event.GroupJoined, nil))
	}))
	bus.ListenAll(listener)

	// When publishing two notifications
	bus.Publish(event.New(event.LoginSuccess, nil), event.New(event.BuddiesUpdated, nil))

	// Then the nested one is delivered after the pending ones
	req.Equal([]event.Type{event.LoginSuccess, event.BuddiesUpdated, event.GroupJoined}, listener.received())
}

func TestBus_Cancel_During_Delivery(t *testing.T) {
	req := require.New(t)
	bus := newTestBus()
	second := &recorder{}
	var secondSubscription interface{ Cancel() }

	// Given the first listener cancels the second one
	bus.ListenAll(event.HandlerFunc(func(e event.Event) {
		secondSubscription.Cancel()
	}))
	secondSubscription = bus.ListenAll(second)

	// When publishing
	bus.Publish(event.New(event.TabsUpdated, nil))

	// Then the second listener is skipped
	req.Empty(second.received())
}

func TestBus_Listener_Panic_Is_Isolated(t *testing.T) {
	req := require.New(t)
	bus := newTestBus()
	listener := &recorder{}

	bus.ListenAll(event.HandlerFunc(func(e event.Event) { panic("boom") }))
	bus.ListenAll(listener)

	req.NotPanics(func() {
		bus.Publish(event.New(event.MessageSent, nil))
	})
	req.Equal([]event.Type{event.MessageSent}, listener.received())
}

func TestBus_Flush(t *testing.T) {
	req := require.New(t)
	bus := newTestBus()
	listener := &recorder{}
	bus.ListenAll(listener)
	source := &outbox{events: []event.Event{event.New(event.TabOpened, nil)}}

	bus.Flush(source)
	bus.Flush(source)

	req.Equal([]event.Type{event.TabOpened}, listener.received())
}
