package loopback

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

type Set map[string]struct{}

// Registry tracks connected endpoints and group membership.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]*Client // map endpoint -> client
	groupMembers map[string]Set     // map group to endpoints
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]*Client),
		groupMembers: make(map[string]Set),
	}
}

// Connect binds an endpoint id to a client. It fails when the id is taken.
func (r *Registry) Connect(endpointID string, client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[endpointID]; taken {
		return false
	}
	r.sessions[endpointID] = client
	return true
}

// Disconnect forgets the endpoint and removes it from every group.
// It returns the groups the endpoint was a member of.
func (r *Registry) Disconnect(endpointID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, endpointID)

	var left []string
	for groupID, members := range r.groupMembers {
		if _, ok := members[endpointID]; !ok {
			continue
		}
		left = append(left, groupID)
		delete(members, endpointID)
		// If no one is left in the group, remove the group entry entirely
		if len(members) == 0 {
			delete(r.groupMembers, groupID)
		}
	}
	slices.Sort(left)
	return left
}

func (r *Registry) Session(endpointID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.sessions[endpointID]
	return client, ok
}

// Subscribe adds the endpoint to a group, creating the group on the fly.
// It reports false when the endpoint already was a member.
func (r *Registry) Subscribe(endpointID, groupID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groupMembers[groupID]; !ok {
		r.groupMembers[groupID] = make(Set)
	}
	if _, ok := r.groupMembers[groupID][endpointID]; ok {
		return false
	}
	r.groupMembers[groupID][endpointID] = struct{}{}
	return true
}

// Members returns the connected clients of a group, sorted by endpoint id.
func (r *Registry) Members(groupID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := lo.Keys(r.groupMembers[groupID])
	slices.Sort(ids)
	return lo.FilterMap(ids, func(id string, _ int) (*Client, bool) {
		client, ok := r.sessions[id]
		return client, ok
	})
}
