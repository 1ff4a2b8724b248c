// Package projection derives read models from notifications.
// It never mutates the engine state and emits nothing.
package projection

import (
	"context"
	"sync"

	"group-messaging/domain"
	"group-messaging/domain/event"

	"github.com/samber/lo"
)

// ActiveTabSource reports the tab currently shown.
type ActiveTabSource interface {
	ActiveTab() (domain.Tab, bool)
}

// Unread counts received messages per conversation while the conversation
// is not shown. Showing or closing the conversation resets its counter.
//
// Clearing every activation only fires tabs.updated, so the shown tab is
// read back from tabs on that notification. tabs may be nil.
type Unread struct {
	mu     sync.Mutex
	tabs   ActiveTabSource
	active string
	counts map[string]int
}

func NewUnread(tabs ActiveTabSource) *Unread {
	return &Unread{tabs: tabs, counts: make(map[string]int)}
}

func (u *Unread) Handle(e event.Event) {
	if e.Type == event.TabsUpdated {
		u.syncActive()
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	switch e.Type {
	case event.MessageReceived:
		if payload, ok := e.Payload.(event.MessageReception); ok && payload.Key != u.active {
			u.counts[payload.Key]++
		}
	case event.TabActivated:
		if payload, ok := e.Payload.(event.TabChange); ok {
			u.active = payload.Label
			delete(u.counts, payload.Label)
		}
	case event.TabDeactivated:
		if payload, ok := e.Payload.(event.TabChange); ok && payload.Label == u.active {
			u.active = ""
		}
	case event.TabClosed:
		if payload, ok := e.Payload.(event.TabChange); ok {
			if payload.Label == u.active {
				u.active = ""
			}
			delete(u.counts, payload.Label)
		}
	case event.LogoutSuccess:
		u.active = ""
		clear(u.counts)
	}
}

func (u *Unread) syncActive() {
	if u.tabs == nil {
		return
	}
	tab, ok := u.tabs.ActiveTab()

	u.mu.Lock()
	defer u.mu.Unlock()
	if !ok {
		u.active = ""
		return
	}
	u.active = tab.Label
}

// Consume lets the projection be fed as a sink.
func (u *Unread) Consume(_ context.Context, e event.Event) error {
	u.Handle(e)
	return nil
}

func (u *Unread) Count(key string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[key]
}

// Snapshot returns the non zero counters.
func (u *Unread) Snapshot() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return lo.Assign(u.counts)
}
