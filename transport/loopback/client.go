package loopback

import (
	"context"
	"fmt"
	"sync"

	"group-messaging/errors"
	"group-messaging/transport"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Client struct {
	hub  *Hub
	id   uuid.UUID
	opts transport.ClientOptions

	mu         sync.Mutex
	endpointID string
	presence   string
	connected  bool
	groups     map[string]*Group

	messages handlers[transport.MessageEvent]
}

func (c *Client) Connect(ctx context.Context, endpointID, presence string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if endpointID == "" {
		return errors.ErrEmptyIdentity
	}

	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrEndpointInUse, c.endpointID)
	}
	if !c.hub.registry.Connect(endpointID, c) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrEndpointInUse, endpointID)
	}
	c.endpointID = endpointID
	c.presence = presence
	c.connected = true
	c.mu.Unlock()

	c.hub.log.Debug("Endpoint connected", "endpoint_id", endpointID, "client_id", c.id)
	c.hub.announce(endpointID, presence)
	return nil
}

// Disconnect leaves every joined group, notifying the remaining members.
func (c *Client) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return errors.ErrNotConnected
	}
	endpointID := c.endpointID
	left := c.hub.registry.Disconnect(endpointID)
	c.connected = false
	c.groups = make(map[string]*Group)
	c.mu.Unlock()

	for _, groupID := range left {
		for _, member := range c.hub.registry.Members(groupID) {
			member.notifyGroup(groupID, endpointID, false)
		}
	}
	c.hub.log.Debug("Endpoint disconnected", "endpoint_id", endpointID, "client_id", c.id)
	c.hub.announce(endpointID, PresenceOffline)
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) EndpointID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpointID
}

func (c *Client) Presence() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return PresenceOffline
	}
	return c.presence
}

// SetPresence changes the announced presence and notifies every watcher.
func (c *Client) SetPresence(ctx context.Context, presence string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return errors.ErrNotConnected
	}
	c.presence = presence
	endpointID := c.endpointID
	c.mu.Unlock()

	c.hub.announce(endpointID, presence)
	return nil
}

// Join adds the client to the group. Joining twice returns the same handle
// and does not notify the members again.
func (c *Client) Join(ctx context.Context, groupID string) (transport.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, errors.ErrNotConnected
	}
	if group, ok := c.groups[groupID]; ok {
		c.mu.Unlock()
		return group, nil
	}
	group := &Group{client: c, id: groupID}
	c.groups[groupID] = group
	endpointID := c.endpointID
	joined := c.hub.registry.Subscribe(endpointID, groupID)
	c.mu.Unlock()

	if joined {
		for _, member := range c.hub.registry.Members(groupID) {
			if member != c {
				member.notifyGroup(groupID, endpointID, true)
			}
		}
	}
	return group, nil
}

func (c *Client) OnMessage(h transport.MessageHandler) transport.Subscription {
	return c.messages.add(h)
}

// Endpoint returns a handle to reach another endpoint directly.
func (c *Client) Endpoint(endpointID string) transport.Endpoint {
	return endpoint{hub: c.hub, from: c, id: endpointID}
}

func (c *Client) notifyGroup(groupID, endpointID string, joined bool) {
	c.mu.Lock()
	group, ok := c.groups[groupID]
	c.mu.Unlock()
	if !ok {
		return
	}
	e := transport.GroupEvent{Connection: endpoint{hub: c.hub, from: c, id: endpointID}}
	if joined {
		group.joins.fire(e)
	} else {
		group.leaves.fire(e)
	}
}

func (c *Client) sender() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", errors.ErrNotConnected
	}
	return c.endpointID, nil
}

type Group struct {
	client *Client
	id     string
	joins  handlers[transport.GroupEvent]
	leaves handlers[transport.GroupEvent]
}

func (g *Group) ID() string { return g.id }

// SendMessage delivers content to every other member of the group.
func (g *Group) SendMessage(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := g.client.sender()
	if err != nil {
		return err
	}
	e := transport.MessageEvent{
		EndpointID: from,
		Message:    content,
		Timestamp:  g.client.hub.now().UnixMilli(),
		Recipient:  g.id,
	}
	for _, member := range g.client.hub.registry.Members(g.id) {
		if member != g.client {
			member.messages.fire(e)
		}
	}
	return nil
}

// GetMembers lists every member of the group, the caller included.
func (g *Group) GetMembers(ctx context.Context) ([]transport.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := g.client.sender(); err != nil {
		return nil, err
	}
	members := g.client.hub.registry.Members(g.id)
	return lo.Map(members, func(member *Client, _ int) transport.Connection {
		return endpoint{hub: g.client.hub, from: g.client, id: member.EndpointID()}
	}), nil
}

func (g *Group) OnJoin(h transport.GroupHandler) transport.Subscription {
	return g.joins.add(h)
}

func (g *Group) OnLeave(h transport.GroupHandler) transport.Subscription {
	return g.leaves.add(h)
}

// SendMessage delivers content directly to the endpoint.
func (e endpoint) SendMessage(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := e.from.sender()
	if err != nil {
		return err
	}
	delivered := e.hub.deliver(e.id, transport.MessageEvent{
		EndpointID: from,
		Message:    content,
		Timestamp:  e.hub.now().UnixMilli(),
	})
	if !delivered {
		return fmt.Errorf("%w: %s", errors.ErrUnknownEndpoint, e.id)
	}
	return nil
}
