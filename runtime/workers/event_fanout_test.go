package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"group-messaging/domain/event"
	"group-messaging/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newFanout(t *testing.T, ctrl *gomock.Controller, bufferSize int, sinkTimeout time.Duration) *EventFanout {
	t.Helper()
	bus := mocks.NewMockIBus(ctrl)
	subscription := mocks.NewMockSubscription(ctrl)
	bus.EXPECT().ListenAll(gomock.Any()).Return(subscription).Times(1)
	return NewEventFanout(logs.GetLoggerFromLevel(slog.LevelDebug), bus, bufferSize, sinkTimeout)
}

func TestEventFanout_Delivers_To_Every_Sink(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)
	fanout := newFanout(t, ctrl, 10, time.Second).Add(sink1, sink2)

	done := make(chan struct{})
	tabsUpdated := event.New(event.TabsUpdated, nil)

	// Given both sinks expect the notification
	sink1.EXPECT().Consume(gomock.Any(), tabsUpdated).Return(nil).Times(1)
	sink2.EXPECT().Consume(gomock.Any(), tabsUpdated).
		Do(func(ctx context.Context, e event.Event) { close(done) }).
		Return(nil).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	// When the bus hands over a notification
	fanout.Handle(tabsUpdated)

	// Then both sinks consumed it
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Sinks were not reached in time")
	}
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)
	fanout := newFanout(t, ctrl, 10, 20*time.Millisecond).Add(sink)

	// Given a sink blocking until its context is done
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.Event) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)

	// When fanning out
	start := time.Now()
	fanout.Fanout(context.Background(), event.New(event.MessagesUpdated, nil))

	// Then the sink was cut by the timeout
	req.Less(time.Since(start), 500*time.Millisecond)
}

func TestEventFanout_Sink_Error_Does_Not_Stop_Others(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)
	fanout := newFanout(t, ctrl, 10, time.Second).Add(failing, healthy)

	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(fmt.Errorf("boom")).Times(1)
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout.Fanout(context.Background(), event.New(event.LoginSuccess, nil))
}

func TestEventFanout_Drops_When_Buffer_Full(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fanout := newFanout(t, ctrl, 1, time.Second)

	// When two notifications arrive while nobody drains
	fanout.Handle(event.New(event.TabOpened, event.TabOpening{Label: "bob"}))
	fanout.Handle(event.New(event.TabsUpdated, nil))

	// Then only the first one is kept
	req.Len(fanout.events, 1)
	req.Equal(event.TabOpened, (<-fanout.events).Type)
}

func TestEventFanout_Close_Cancels_Subscription(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockIBus(ctrl)
	subscription := mocks.NewMockSubscription(ctrl)
	bus.EXPECT().ListenAll(gomock.Any()).Return(subscription).Times(1)
	subscription.EXPECT().Cancel().Times(1)

	NewEventFanout(slog.Default(), bus, 0, 0).Close()
}
