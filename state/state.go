// Package state is the client-side conversation state engine.
//
// A State composes four tables sharing one lock and one outbox:
// the session (identity and transport handles), the buddy registry,
// the tab registry and the message store. Every mutation runs as a turn:
// the tables are changed under the lock, the notifications produced are
// queued in the outbox, and the outbox is published on the bus once the lock
// is released. Listeners therefore observe the final state of the turn and
// may call back into the State.
//
// Transport calls are never made while holding the lock.
package state

import (
	"log/slog"
	"sync"
	"time"

	"group-messaging/contract"
	"group-messaging/domain"
	"group-messaging/domain/event"
	"group-messaging/repositories"
	"group-messaging/transport"
)

// DefaultGroupID is the well-known broadcast group every user joins.
const DefaultGroupID = "Everyone"

type State struct {
	mu         sync.Mutex
	log        *slog.Logger
	bus        contract.IBus
	dialer     transport.Dialer
	repository repositories.IMessageRepository
	groupID    string
	now        func() time.Time

	// Session
	client              transport.Client
	group               transport.Group
	loggedInUser        string
	status              domain.SessionStatus
	messageSubscription transport.Subscription
	joinSubscription    transport.Subscription
	leaveSubscription   transport.Subscription

	// Buddy registry
	buddies            []domain.Buddy
	buddySubscriptions map[string]transport.Subscription

	// Tab registry
	tabs []*domain.Tab

	outbox []event.Event
}

func New(log *slog.Logger, bus contract.IBus, dialer transport.Dialer,
	repository repositories.IMessageRepository, groupID string) *State {
	if groupID == "" {
		groupID = DefaultGroupID
	}
	return &State{
		log:                log,
		bus:                bus,
		dialer:             dialer,
		repository:         repository,
		groupID:            groupID,
		now:                time.Now,
		status:             domain.LoggedOut,
		buddySubscriptions: make(map[string]transport.Subscription),
	}
}

// FlushEvents hands over the notifications queued so far.
func (s *State) FlushEvents() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.outbox
	s.outbox = nil
	return events
}

// turn runs fn under the lock then publishes what it emitted.
func (s *State) turn(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.flush()
}

func (s *State) flush() {
	if events := s.FlushEvents(); len(events) > 0 {
		s.bus.Publish(events...)
	}
}

// emit queues a notification. Must be called under the lock.
func (s *State) emit(t event.Type, payload any) {
	s.outbox = append(s.outbox, event.New(t, payload))
}
