// Package domain contains core concepts of the conversation state engine.
// This file defines Message entries and their routing rule.
// Messages are immutable once created.
package domain

import (
	"cmp"
	"slices"

	"group-messaging/transport"

	"github.com/google/uuid"
)

type MessageKind int

const (
	DirectMessage MessageKind = iota
	GroupMessage
)

func (k MessageKind) String() string {
	switch k {
	case GroupMessage:
		return "GROUP"
	default:
		return "DIRECT"
	}
}

// Message is one delivered or sent chat entry.
// Timestamp is expressed in epoch milliseconds.
type Message struct {
	ID          uuid.UUID // unique identifier
	Kind        MessageKind
	To          string
	From        string
	Content     string
	Timestamp   int64
	Recipient   string // group id, only for GroupMessage
	IsMyMessage bool
}

// NewDirectMessage builds a peer to peer message. me is the logged in user.
func NewDirectMessage(to, from, content string, timestamp int64, me string) Message {
	return Message{
		ID:          uuid.New(),
		Kind:        DirectMessage,
		To:          to,
		From:        from,
		Content:     content,
		Timestamp:   timestamp,
		IsMyMessage: from == me,
	}
}

// NewGroupMessage builds a message routed to the recipient group whatever
// the sender and receiver are.
func NewGroupMessage(to, from, content string, timestamp int64, recipient, me string) Message {
	m := NewDirectMessage(to, from, content, timestamp, me)
	m.Kind = GroupMessage
	m.Recipient = recipient
	return m
}

// FromMessageEvent decodes an incoming transport message addressed to me.
func FromMessageEvent(e transport.MessageEvent, me string) Message {
	if e.Recipient != "" {
		return NewGroupMessage(me, e.EndpointID, e.Message, e.Timestamp, e.Recipient, me)
	}
	return NewDirectMessage(me, e.EndpointID, e.Message, e.Timestamp, me)
}

// Key returns the conversation bucket of the message: the group for group
// messages, otherwise the counterpart of the logged in user.
func (m Message) Key() string {
	if m.Kind == GroupMessage {
		return m.Recipient
	}
	if m.IsMyMessage {
		return m.To
	}
	return m.From
}

// SortByTimestamp orders messages by ascending timestamp.
// Messages sharing a timestamp keep their insertion order.
func SortByTimestamp(messages []Message) {
	slices.SortStableFunc(messages, func(a, b Message) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
}
