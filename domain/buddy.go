// Package domain contains core concepts of the conversation state engine.
// This file defines Buddy entities (direct peers and broadcast groups).
// No network or UI logic should be added here, only the transport capability.
package domain

import (
	"context"
	"sync"

	"group-messaging/transport"
)

type Presence string

const PresenceAvailable Presence = transport.PresenceAvailable

type BuddyKind string

const (
	UserBuddyKind  BuddyKind = "USER"
	GroupBuddyKind BuddyKind = "GROUP"
)

// PresenceListener is notified with the new presence of a buddy.
type PresenceListener func(presence Presence)

// Buddy is a conversation partner: a peer endpoint or a broadcast group.
// Both variants share the same contract and only differ on how messages
// are sent and what Dispose releases.
type Buddy interface {
	Username() string
	Kind() BuddyKind
	Presence() Presence
	IsActive() bool
	SetActive(active bool)
	SendMessage(ctx context.Context, content string) error
	OnPresenceChanged(l PresenceListener) transport.Subscription
	Dispose()
}

type buddy struct {
	mu        sync.RWMutex
	username  string
	presence  Presence
	isActive  bool
	disposed  bool
	nextID    uint64
	listeners map[uint64]PresenceListener
}

func (b *buddy) init(username, presence string, isActive bool) {
	b.username = username
	b.presence = Presence(presence)
	if b.presence == "" {
		b.presence = PresenceAvailable
	}
	b.isActive = isActive
	b.listeners = make(map[uint64]PresenceListener)
}

func (b *buddy) Username() string { return b.username }

func (b *buddy) Presence() Presence {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.presence
}

func (b *buddy) IsActive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isActive
}

func (b *buddy) SetActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.isActive = active
}

// OnPresenceChanged registers a listener until the returned subscription is
// cancelled or the buddy is disposed. Registering on a disposed buddy returns
// an inert subscription.
func (b *buddy) OnPresenceChanged(l PresenceListener) transport.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return presenceSubscription{}
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	return presenceSubscription{buddy: b, id: id}
}

func (b *buddy) changePresence(presence Presence) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.presence = presence
	listeners := make([]PresenceListener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l(presence)
	}
}

// dispose drops every listener and reports whether this call did it.
func (b *buddy) dispose() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return false
	}
	b.disposed = true
	clear(b.listeners)
	return true
}

type presenceSubscription struct {
	buddy *buddy
	id    uint64
}

func (s presenceSubscription) Cancel() {
	if s.buddy == nil {
		return
	}
	s.buddy.mu.Lock()
	defer s.buddy.mu.Unlock()
	delete(s.buddy.listeners, s.id)
}

// UserBuddy is backed by a direct peer endpoint and follows its presence.
type UserBuddy struct {
	buddy
	endpoint     transport.Endpoint
	subscription transport.Subscription
}

func NewUserBuddy(connection transport.Connection, isActive bool) *UserBuddy {
	endpoint := connection.Endpoint()
	b := &UserBuddy{endpoint: endpoint}
	b.init(connection.EndpointID(), endpoint.Presence(), isActive)
	b.subscription = endpoint.OnPresence(func(e transport.PresenceEvent) {
		b.changePresence(Presence(e.Presence))
	})
	return b
}

func (b *UserBuddy) Kind() BuddyKind { return UserBuddyKind }

func (b *UserBuddy) SendMessage(ctx context.Context, content string) error {
	return b.endpoint.SendMessage(ctx, content)
}

// Dispose stops following the endpoint presence. Late presence callbacks
// from the transport are dropped.
func (b *UserBuddy) Dispose() {
	if b.dispose() && b.subscription != nil {
		b.subscription.Cancel()
	}
}

// GroupBuddy is backed by a broadcast group. Sends fan out to all members
// and presence is never tracked.
type GroupBuddy struct {
	buddy
	group transport.Group
}

func NewGroupBuddy(group transport.Group, isActive bool) *GroupBuddy {
	b := &GroupBuddy{group: group}
	b.init(group.ID(), "", isActive)
	return b
}

func (b *GroupBuddy) Kind() BuddyKind { return GroupBuddyKind }

func (b *GroupBuddy) SendMessage(ctx context.Context, content string) error {
	return b.group.SendMessage(ctx, content)
}

func (b *GroupBuddy) Dispose() {
	b.dispose()
}
