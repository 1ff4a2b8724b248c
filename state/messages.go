package state

import (
	"context"
	"fmt"

	"group-messaging/domain"
	"group-messaging/domain/event"
	"group-messaging/errors"
	"group-messaging/transport"
)

// AddMessage stores the message in its conversation and makes sure a tab
// exists for it.
func (s *State) AddMessage(message domain.Message) {
	s.turn(func() { s.addMessage(message) })
}

// ActiveMessages returns the history of the active tab, empty when no tab
// is active.
func (s *State) ActiveMessages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasActiveTab() {
		return []domain.Message{}
	}
	return s.messages(s.activeTab().Label)
}

// Messages returns the history of one conversation.
func (s *State) Messages(key string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages(key)
}

// Conversations lists the keys holding at least one message.
func (s *State) Conversations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.repository.Keys()
	if err != nil {
		s.log.Error("Listing conversations failed", "error", err)
		return nil
	}
	return keys
}

func (s *State) messages(key string) []domain.Message {
	messages, err := s.repository.GetMessages(key)
	if err != nil {
		s.log.Error("Reading conversation failed", "key", key, "error", err)
		return []domain.Message{}
	}
	if messages == nil {
		return []domain.Message{}
	}
	return messages
}

// addMessage routes the message to its bucket. When idle (no active tab)
// the conversation becomes the shown one; a never seen conversation always
// gets at least a background tab. Both checks run in this order and may
// both open a tab for the same message.
func (s *State) addMessage(message domain.Message) {
	key := message.Key()
	if err := s.repository.StoreMessage(message); err != nil {
		s.log.Error("Storing message failed", "key", key, "error", err)
		return
	}

	if active := s.activeTab(); active != nil && active.Label == key {
		s.emit(event.MessageAdded, event.MessageAddition{To: message.To, From: message.From})
	}
	s.emit(event.MessagesUpdated, nil)

	if !s.hasActiveTab() {
		s.openTab(key, true)
	}
	if s.findTab(key) == nil {
		s.openTab(key, false)
	}
}

// onMessageReceived decodes and stores a message delivered by the client.
func (s *State) onMessageReceived(client transport.Client, e transport.MessageEvent) {
	s.turn(func() {
		if s.client != client || s.status != domain.LoggedIn {
			return
		}
		message := domain.FromMessageEvent(e, s.loggedInUser)
		s.addMessage(message)
		s.emit(event.MessageReceived, event.MessageReception{Key: message.Key()})
	})
}

// SendMessage sends content to the buddy behind the active tab.
// It reports false without error when there is no active tab or no buddy
// behind it. The message is recorded only once the transport confirmed it,
// and only if the session that sent it is still logged in.
func (s *State) SendMessage(ctx context.Context, content string) (bool, error) {
	s.mu.Lock()
	active := s.activeTab()
	if active == nil {
		s.mu.Unlock()
		s.log.Debug("No active tab, message dropped")
		return false, nil
	}
	buddy := s.findBuddy(active.Label)
	if buddy == nil {
		s.mu.Unlock()
		s.log.Debug("No buddy behind active tab, message dropped", "label", active.Label)
		return false, nil
	}
	me, client := s.loggedInUser, s.client
	timestamp := s.now().UnixMilli()
	s.mu.Unlock()

	if err := buddy.SendMessage(ctx, content); err != nil {
		s.turn(func() { s.emit(event.MessageFailed, nil) })
		s.log.Error("Message sending failed", "to", buddy.Username(), "error", err)
		return false, fmt.Errorf("%w: %v", errors.ErrSendFailed, err)
	}

	s.turn(func() {
		if s.stale(client) {
			s.log.Debug("Session ended during send, message not recorded", "to", buddy.Username())
			return
		}
		s.emit(event.MessageSent, nil)
		s.addMessage(domain.NewDirectMessage(buddy.Username(), me, content, timestamp, me))
	})
	return true, nil
}
