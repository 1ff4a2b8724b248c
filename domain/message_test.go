package domain

import (
	"testing"

	"group-messaging/transport"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestMessage_Key(t *testing.T) {
	req := require.New(t)

	// Sent by me: bucketed under the receiver
	sent := NewDirectMessage("bob", "alice", "hi", 1, "alice")
	req.True(sent.IsMyMessage)
	req.Equal("bob", sent.Key())

	// Received: bucketed under the sender
	received := NewDirectMessage("alice", "bob", "hey", 2, "alice")
	req.False(received.IsMyMessage)
	req.Equal("bob", received.Key())

	// Group: bucketed under the group whoever the sender is
	group := NewGroupMessage("alice", "carol", "hi all", 3, "Everyone", "alice")
	req.Equal("Everyone", group.Key())
	mine := NewGroupMessage("Everyone", "alice", "me too", 4, "Everyone", "alice")
	req.Equal("Everyone", mine.Key())
}

func TestFromMessageEvent(t *testing.T) {
	req := require.New(t)

	direct := FromMessageEvent(transport.MessageEvent{EndpointID: "bob", Message: "hey", Timestamp: 10}, "alice")
	req.Equal(DirectMessage, direct.Kind)
	req.Equal("alice", direct.To)
	req.Equal("bob", direct.From)
	req.Equal(int64(10), direct.Timestamp)
	req.Equal("bob", direct.Key())

	group := FromMessageEvent(transport.MessageEvent{EndpointID: "carol", Message: "hi all", Recipient: "Everyone"}, "alice")
	req.Equal(GroupMessage, group.Kind)
	req.Equal("GROUP", group.Kind.String())
	req.Equal("Everyone", group.Key())
	req.NotEqual(direct.ID, group.ID)
}

func TestSortByTimestamp_Is_Stable(t *testing.T) {
	req := require.New(t)
	messages := []Message{
		NewDirectMessage("bob", "alice", "third", 30, "alice"),
		NewDirectMessage("bob", "alice", "first", 10, "alice"),
		NewDirectMessage("alice", "bob", "second-a", 20, "alice"),
		NewDirectMessage("bob", "alice", "second-b", 20, "alice"),
	}

	SortByTimestamp(messages)

	req.Equal([]string{"first", "second-a", "second-b", "third"}, lo.Map(messages, func(m Message, _ int) string {
		return m.Content
	}))
}
