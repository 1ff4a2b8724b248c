package event

import "time"

type Type string

// Notifications emitted by the conversation state engine.
const (
	BuddiesUpdated  Type = "buddies.updated"
	BuddiesError    Type = "buddies.error"
	BuddyActivated  Type = "buddy.activated"
	TabOpened       Type = "tab.opened"
	TabClosed       Type = "tab.closed"
	TabActivated    Type = "tab.activated"
	TabDeactivated  Type = "tab.deactivated"
	TabsUpdated     Type = "tabs.updated"
	MessageAdded    Type = "message.added"
	MessageSent     Type = "message.sent"
	MessageFailed   Type = "message.failed"
	MessageReceived Type = "message.received"
	MessagesUpdated Type = "messages.updated"
	LoginSuccess    Type = "login.success"
	LoginError      Type = "login.error"
	LogoutSuccess   Type = "logout.success"
	LogoutFailed    Type = "logout.failed"
	GroupJoined     Type = "group.joined"
	GroupUnjoined   Type = "group.unjoined"
	InitSuccess     Type = "init.success"
)

// Event is the envelope handed to listeners. Payload is nil for
// notifications without data.
type Event struct {
	Type       Type
	Payload    any
	OccurredAt time.Time
}

func New(t Type, payload any) Event {
	return Event{Type: t, Payload: payload, OccurredAt: time.Now().UTC()}
}

type BuddyActivation struct {
	Username string
}

type TabOpening struct {
	Label    string
	IsActive bool
}

type TabChange struct {
	Label string
}

type MessageAddition struct {
	To   string
	From string
}

type MessageReception struct {
	Key string
}

// Failure carries the transport cause of login.error, logout.failed,
// group.unjoined and buddies.error.
type Failure struct {
	Err error
}
