package state

import (
	"context"
	"fmt"

	"group-messaging/domain"
	"group-messaging/domain/event"
	"group-messaging/errors"
	"group-messaging/transport"
)

// Init builds the transport client handle. It does nothing while a client
// is connected or a session is in progress.
func (s *State) Init(appID string) error {
	var err error
	s.turn(func() {
		if s.client != nil && (s.status != domain.LoggedOut || s.client.IsConnected()) {
			return
		}
		var client transport.Client
		client, err = s.dialer.NewClient(transport.ClientOptions{
			AppID:           appID,
			DevelopmentMode: true,
		})
		if err != nil {
			s.log.Error("Transport client creation failed", "app_id", appID, "error", err)
			return
		}
		s.client = client
		s.emit(event.InitSuccess, nil)
	})
	return err
}

// Login connects as username with the available presence. It is a no-op
// while a session is connecting or connected. On failure the session is
// left logged out.
func (s *State) Login(ctx context.Context, username string) error {
	s.mu.Lock()
	client := s.client
	if client == nil {
		s.emit(event.LoginError, event.Failure{Err: errors.ErrClientNotInitialized})
		s.mu.Unlock()
		s.flush()
		s.log.Error("Login failed", "username", username, "error", errors.ErrClientNotInitialized)
		return errors.ErrClientNotInitialized
	}
	if status := s.status; status != domain.LoggedOut {
		s.mu.Unlock()
		s.log.Debug("Login ignored, session already started", "status", status)
		return nil
	}
	s.transition(domain.Connecting)
	s.mu.Unlock()

	if err := client.Connect(ctx, username, transport.PresenceAvailable); err != nil {
		wrapped := fmt.Errorf("%w: %v", errors.ErrLoginFailed, err)
		s.turn(func() {
			s.transition(domain.LoggedOut)
			s.emit(event.LoginError, event.Failure{Err: wrapped})
		})
		s.log.Error("Login failed", "username", username, "error", err)
		return wrapped
	}

	s.turn(func() {
		s.transition(domain.LoggedIn)
		s.loggedInUser = username
		s.messageSubscription = client.OnMessage(func(e transport.MessageEvent) {
			s.onMessageReceived(client, e)
		})
		s.emit(event.LoginSuccess, nil)
	})
	s.log.Info("Logged in", "username", username)
	return nil
}

// LoadBuddies joins the broadcast group, registers it as a buddy, follows
// its membership and registers every current member except the logged in
// user. Members added before an enumeration failure are kept.
func (s *State) LoadBuddies(ctx context.Context) error {
	s.mu.Lock()
	client, groupID := s.client, s.groupID
	s.mu.Unlock()

	if client == nil {
		s.turn(func() {
			s.emit(event.GroupUnjoined, event.Failure{Err: errors.ErrClientNotInitialized})
		})
		s.log.Error("Group join failed", "group_id", groupID, "error", errors.ErrClientNotInitialized)
		return errors.ErrClientNotInitialized
	}

	group, err := client.Join(ctx, groupID)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", errors.ErrGroupJoinFailed, err)
		s.turn(func() { s.emit(event.GroupUnjoined, event.Failure{Err: wrapped}) })
		s.log.Error("Group join failed", "group_id", groupID, "error", err)
		return wrapped
	}

	stale := false
	s.turn(func() {
		if stale = s.stale(client); stale {
			return
		}
		s.emit(event.GroupJoined, nil)
		s.addBuddy(domain.NewGroupBuddy(group, false))
		s.ignoreGroup()
		s.group = group
		s.joinSubscription = group.OnJoin(func(e transport.GroupEvent) {
			s.onGroupJoin(group, e)
		})
		s.leaveSubscription = group.OnLeave(func(e transport.GroupEvent) {
			s.onGroupLeave(group, e)
		})
	})
	if stale {
		s.log.Debug("Session ended during group join, roster dropped", "group_id", groupID)
		return nil
	}

	connections, err := group.GetMembers(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", errors.ErrMembersFailed, err)
		s.turn(func() { s.emit(event.BuddiesError, event.Failure{Err: wrapped}) })
		s.log.Error("Group members enumeration failed", "group_id", groupID, "error", err)
		return wrapped
	}

	s.turn(func() {
		if s.stale(client) || s.group != group {
			s.log.Debug("Session ended during members listing, roster dropped", "group_id", groupID)
			return
		}
		for _, connection := range connections {
			username := connection.EndpointID()
			if username == s.loggedInUser || s.findBuddy(username) != nil {
				continue
			}
			s.addBuddy(domain.NewUserBuddy(connection, false))
		}
		s.emit(event.BuddiesUpdated, nil)
	})
	return nil
}

// Logout disconnects then resets every table. When the disconnect fails the
// local state is left intact so the caller may retry.
func (s *State) Logout(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	if client == nil {
		s.emit(event.LogoutFailed, event.Failure{Err: errors.ErrClientNotInitialized})
		s.mu.Unlock()
		s.flush()
		s.log.Error("Logout failed", "error", errors.ErrClientNotInitialized)
		return errors.ErrClientNotInitialized
	}
	previous := s.status
	if previous == domain.LoggedIn {
		s.transition(domain.LoggingOut)
	}
	s.mu.Unlock()

	if err := client.Disconnect(ctx); err != nil {
		wrapped := fmt.Errorf("%w: %v", errors.ErrLogoutFailed, err)
		s.turn(func() {
			if s.status == domain.LoggingOut {
				s.transition(previous)
			}
			s.emit(event.LogoutFailed, event.Failure{Err: wrapped})
		})
		s.log.Error("Logout failed", "error", err)
		return wrapped
	}

	s.turn(func() {
		if s.messageSubscription != nil {
			s.messageSubscription.Cancel()
			s.messageSubscription = nil
		}
		s.disposeBuddies()
		s.emit(event.BuddiesUpdated, nil)
		s.tabs = nil
		s.emit(event.TabsUpdated, nil)
		if err := s.repository.Clear(); err != nil {
			s.log.Error("Clearing messages failed", "error", err)
		}
		s.emit(event.MessagesUpdated, nil)
		s.ignoreGroup()
		s.group = nil
		s.loggedInUser = ""
		if s.status == domain.LoggingOut {
			s.transition(domain.LoggedOut)
		}
		s.emit(event.LogoutSuccess, nil)
	})
	s.log.Info("Logged out")
	return nil
}

func (s *State) LoggedInUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedInUser
}

func (s *State) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Group returns the joined broadcast group, nil before LoadBuddies.
func (s *State) Group() transport.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group
}

// ignoreGroup revokes the membership subscriptions of the current group.
func (s *State) ignoreGroup() {
	if s.joinSubscription != nil {
		s.joinSubscription.Cancel()
		s.joinSubscription = nil
	}
	if s.leaveSubscription != nil {
		s.leaveSubscription.Cancel()
		s.leaveSubscription = nil
	}
}

// stale reports whether the session that started a transport call with
// client is gone. Must be called under the lock.
func (s *State) stale(client transport.Client) bool {
	return s.client != client || s.status != domain.LoggedIn
}

func (s *State) transition(next domain.SessionStatus) {
	if !s.status.CanTransitionTo(next) {
		s.log.Warn("Unexpected session transition", "from", s.status, "to", next)
	}
	s.status = next
}
