package projection

import (
	"context"
	"testing"

	"group-messaging/domain"
	"group-messaging/domain/event"

	"github.com/stretchr/testify/require"
)

func received(key string) event.Event {
	return event.New(event.MessageReceived, event.MessageReception{Key: key})
}

func TestUnread_Counts_Only_Background_Conversations(t *testing.T) {
	req := require.New(t)
	unread := NewUnread(nil)

	// Given bob's conversation is shown
	unread.Handle(event.New(event.TabActivated, event.TabChange{Label: "bob"}))

	// When messages arrive for bob and carol
	unread.Handle(received("bob"))
	unread.Handle(received("carol"))
	unread.Handle(received("carol"))

	// Then only carol's are unread
	req.Zero(unread.Count("bob"))
	req.Equal(2, unread.Count("carol"))
	req.Equal(map[string]int{"carol": 2}, unread.Snapshot())
}

func TestUnread_Reset_On_Activation_And_Close(t *testing.T) {
	req := require.New(t)
	unread := NewUnread(nil)
	unread.Handle(received("bob"))
	unread.Handle(received("carol"))

	// When carol is shown and bob closed
	unread.Handle(event.New(event.TabActivated, event.TabChange{Label: "carol"}))
	unread.Handle(event.New(event.TabClosed, event.TabChange{Label: "bob"}))

	// Then
	req.Empty(unread.Snapshot())

	// And once carol is hidden messages for carol count again
	unread.Handle(event.New(event.TabDeactivated, event.TabChange{Label: "carol"}))
	req.NoError(unread.Consume(context.Background(), received("carol")))
	req.Equal(1, unread.Count("carol"))
}

func TestUnread_Cleared_On_Logout(t *testing.T) {
	req := require.New(t)
	unread := NewUnread(nil)
	unread.Handle(received("bob"))
	unread.Handle(event.New(event.TabActivated, event.TabChange{Label: "dave"}))

	unread.Handle(event.New(event.LogoutSuccess, nil))

	req.Empty(unread.Snapshot())
	unread.Handle(received("dave"))
	req.Equal(1, unread.Count("dave"))
}

func TestUnread_Ignores_Invalid_Payloads(t *testing.T) {
	req := require.New(t)
	unread := NewUnread(nil)

	unread.Handle(event.New(event.MessageReceived, "bob"))
	unread.Handle(event.New(event.TabActivated, nil))

	req.Empty(unread.Snapshot())
}

type shownTab struct {
	label string
}

func (s *shownTab) ActiveTab() (domain.Tab, bool) {
	if s.label == "" {
		return domain.Tab{}, false
	}
	return domain.Tab{Label: s.label, IsActive: true}, true
}

func TestUnread_Counts_Again_Once_Every_Tab_Is_Deactivated(t *testing.T) {
	req := require.New(t)
	tabs := &shownTab{label: "bob"}
	unread := NewUnread(tabs)
	unread.Handle(event.New(event.TabActivated, event.TabChange{Label: "bob"}))

	// When every activation is cleared without tab.deactivated
	tabs.label = ""
	unread.Handle(event.New(event.TabsUpdated, nil))

	// Then messages for bob are unread
	unread.Handle(received("bob"))
	req.Equal(1, unread.Count("bob"))
}
