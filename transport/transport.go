//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks

// Package transport describes the real-time messaging capability consumed by
// the conversation state engine. Implementations live elsewhere (see loopback).
// All blocking calls honour the given context; timeouts are the
// implementation's business.
package transport

import "context"

// PresenceAvailable is the presence announced on connect.
const PresenceAvailable = "available"

// ClientOptions configures a client handle before it connects.
type ClientOptions struct {
	AppID           string
	DevelopmentMode bool
}

// Subscription is a revocable listener registration.
// Cancel must be idempotent.
type Subscription interface {
	Cancel()
}

type MessageHandler func(e MessageEvent)
type GroupHandler func(e GroupEvent)
type PresenceHandler func(e PresenceEvent)

// MessageEvent is delivered for every message addressed to the client,
// either directly or through a group it joined. Recipient is only set for
// group messages and holds the group id.
type MessageEvent struct {
	EndpointID string
	Message    string
	Timestamp  int64
	Recipient  string
}

// GroupEvent is delivered on group join and leave.
type GroupEvent struct {
	Connection Connection
}

type PresenceEvent struct {
	Presence string
}

// Dialer builds client handles.
type Dialer interface {
	NewClient(opts ClientOptions) (Client, error)
}

type Client interface {
	Connect(ctx context.Context, endpointID, presence string) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Join(ctx context.Context, groupID string) (Group, error)
	OnMessage(h MessageHandler) Subscription
}

type Group interface {
	ID() string
	SendMessage(ctx context.Context, content string) error
	GetMembers(ctx context.Context) ([]Connection, error)
	OnJoin(h GroupHandler) Subscription
	OnLeave(h GroupHandler) Subscription
}

type Connection interface {
	EndpointID() string
	Presence() string
	Endpoint() Endpoint
}

type Endpoint interface {
	ID() string
	Presence() string
	SendMessage(ctx context.Context, content string) error
	OnPresence(h PresenceHandler) Subscription
}
