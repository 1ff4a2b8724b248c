package state

import (
	"group-messaging/domain"
	"group-messaging/domain/event"
	"group-messaging/transport"

	"github.com/samber/lo"
)

// AddBuddy registers a buddy. The registry takes ownership: a buddy whose
// username is already tracked is disposed and ignored.
func (s *State) AddBuddy(buddy domain.Buddy) {
	s.turn(func() { s.addBuddy(buddy) })
}

// RemoveBuddy disposes and forgets the buddy. It returns nil when no buddy
// has this username.
func (s *State) RemoveBuddy(username string) domain.Buddy {
	var removed domain.Buddy
	s.turn(func() { removed = s.removeBuddy(username) })
	return removed
}

// ActivateBuddy marks the buddy as the only active one and surfaces its
// conversation tab. Unknown usernames leave everything untouched.
func (s *State) ActivateBuddy(username string) {
	s.turn(func() { s.activateBuddy(username) })
}

// Buddies returns the registry content in insertion order.
func (s *State) Buddies() []domain.Buddy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Buddy(nil), s.buddies...)
}

func (s *State) FindBuddy(username string) (domain.Buddy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buddy := s.findBuddy(username)
	return buddy, buddy != nil
}

func (s *State) findBuddy(username string) domain.Buddy {
	buddy, _ := lo.Find(s.buddies, func(b domain.Buddy) bool {
		return b.Username() == username
	})
	return buddy
}

func (s *State) addBuddy(buddy domain.Buddy) {
	username := buddy.Username()
	if s.findBuddy(username) != nil {
		s.log.Debug("Buddy already tracked", "username", username)
		buddy.Dispose()
		return
	}
	s.buddies = append(s.buddies, buddy)
	s.buddySubscriptions[username] = buddy.OnPresenceChanged(func(presence domain.Presence) {
		s.turn(func() {
			s.log.Debug("Buddy presence changed", "username", username, "presence", presence)
			s.emit(event.BuddiesUpdated, nil)
		})
	})
	if buddy.IsActive() {
		s.activateBuddy(username)
	}
}

func (s *State) removeBuddy(username string) domain.Buddy {
	buddy, index, found := lo.FindIndexOf(s.buddies, func(b domain.Buddy) bool {
		return b.Username() == username
	})
	if !found {
		s.log.Debug("No buddy to remove", "username", username)
		return nil
	}
	if subscription, ok := s.buddySubscriptions[username]; ok {
		subscription.Cancel()
		delete(s.buddySubscriptions, username)
	}
	buddy.Dispose()
	s.buddies = append(s.buddies[:index], s.buddies[index+1:]...)
	return buddy
}

func (s *State) activateBuddy(username string) {
	if s.findBuddy(username) == nil {
		s.log.Debug("No buddy to activate", "username", username)
		return
	}
	for _, buddy := range s.buddies {
		buddy.SetActive(buddy.Username() == username)
	}
	s.emit(event.BuddyActivated, event.BuddyActivation{Username: username})
	s.openTab(username, true)
}

// disposeBuddies releases every buddy and empties the registry.
func (s *State) disposeBuddies() {
	for _, buddy := range s.buddies {
		if subscription, ok := s.buddySubscriptions[buddy.Username()]; ok {
			subscription.Cancel()
		}
		buddy.Dispose()
	}
	s.buddies = nil
	s.buddySubscriptions = make(map[string]transport.Subscription)
}

// onGroupJoin tracks a peer joining the group, except the logged in user
// and peers already tracked.
func (s *State) onGroupJoin(group transport.Group, e transport.GroupEvent) {
	s.turn(func() {
		if s.group != group {
			return
		}
		username := e.Connection.EndpointID()
		if username == s.loggedInUser {
			return
		}
		if s.findBuddy(username) != nil {
			return
		}
		s.addBuddy(domain.NewUserBuddy(e.Connection, false))
		s.emit(event.BuddiesUpdated, nil)
	})
}

// onGroupLeave forgets a peer leaving the group and closes its tab.
func (s *State) onGroupLeave(group transport.Group, e transport.GroupEvent) {
	s.turn(func() {
		if s.group != group {
			return
		}
		username := e.Connection.EndpointID()
		if s.removeBuddy(username) == nil {
			return
		}
		s.emit(event.BuddiesUpdated, nil)
		s.closeTab(username)
	})
}
