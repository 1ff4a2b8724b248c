package sink

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"group-messaging/domain"
	"group-messaging/domain/event"
	"group-messaging/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeView struct {
	buddies  []domain.Buddy
	tabs     []domain.Tab
	messages []domain.Message
}

func (v fakeView) Buddies() []domain.Buddy          { return v.buddies }
func (v fakeView) Tabs() []domain.Tab               { return v.tabs }
func (v fakeView) ActiveMessages() []domain.Message { return v.messages }

type fixedUnread map[string]int

func (u fixedUnread) Count(key string) int { return u[key] }

func TestConsoleSink_Renders_Buddies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	group := mocks.NewMockGroup(ctrl)
	group.EXPECT().ID().Return("Everyone").AnyTimes()
	out := &bytes.Buffer{}
	view := fakeView{buddies: []domain.Buddy{domain.NewGroupBuddy(group, true)}}

	err := NewConsoleSink(out, view, nil).Consume(context.Background(), event.New(event.BuddiesUpdated, nil))

	req.NoError(err)
	req.Contains(out.String(), "Everyone")
	req.Contains(out.String(), string(domain.GroupBuddyKind))
	req.Contains(out.String(), string(domain.PresenceAvailable))
}

func TestConsoleSink_Renders_Tabs_With_Unread(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}
	view := fakeView{tabs: []domain.Tab{{Label: "bob", IsActive: true}, {Label: "carol"}}}

	err := NewConsoleSink(out, view, fixedUnread{"carol": 3}).Consume(context.Background(), event.New(event.TabsUpdated, nil))

	req.NoError(err)
	req.Contains(out.String(), "bob")
	req.Contains(out.String(), "carol")
	req.Contains(out.String(), "3")
}

func TestConsoleSink_Renders_Empty_Tab_Strip(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}

	req.NoError(NewConsoleSink(out, fakeView{}, nil).Consume(context.Background(), event.New(event.TabsUpdated, nil)))

	req.Contains(out.String(), "(no tab)")
}

func TestConsoleSink_Renders_Active_Messages(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}
	view := fakeView{messages: []domain.Message{
		domain.NewDirectMessage("bob", "alice", "hi bob", 1_000, "alice"),
		domain.NewDirectMessage("alice", "bob", "hi alice", 2_000, "alice"),
	}}

	req.NoError(NewConsoleSink(out, view, nil).Consume(context.Background(), event.New(event.MessagesUpdated, nil)))

	req.Contains(out.String(), "hi bob")
	req.Contains(out.String(), "bob: hi alice")
}

func TestConsoleSink_Renders_Failures(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}
	sink := NewConsoleSink(out, fakeView{}, nil)

	req.NoError(sink.Consume(context.Background(), event.New(event.LoginError, event.Failure{Err: fmt.Errorf("boom")})))

	req.Contains(out.String(), "login.error")
	req.Contains(out.String(), "boom")
}

func TestConsoleSink_Cancelled_Context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewConsoleSink(&bytes.Buffer{}, fakeView{}, nil).Consume(ctx, event.New(event.TabsUpdated, nil))

	require.ErrorIs(t, err, context.Canceled)
}
