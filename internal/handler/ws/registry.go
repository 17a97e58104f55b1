package ws

import (
	"sync"

	"github.com/google/uuid"

	"gamerchat-backend/pkg/metrics"
)

// Registry maps authenticated users to their live WebSocket client.
// Each user holds at most one connection; a reconnect replaces the old
// one, and the old connection's close runs the full disconnect path.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register stores the client as the live connection for its user.
// An existing connection for the same user is closed exactly once;
// its cleanup runs on its own read loop, after the replacement is
// already in place.
func (r *Registry) Register(userID uuid.UUID, client *Client) {
	r.mu.Lock()
	old, replaced := r.clients[userID]
	r.clients[userID] = client
	r.mu.Unlock()

	if replaced && old != client {
		metrics.WebSocketConnectionsReplacedTotal.Inc()
		old.Close()
	}
}

// Lookup returns the live client for a user, if any
func (r *Registry) Lookup(userID uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[userID]
	return client, ok
}

// Remove deletes the entry for a user, but only when it still points at
// the given client. A replaced connection cleaning up after itself must
// not evict its replacement.
func (r *Registry) Remove(userID uuid.UUID, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.clients[userID]; ok && current == client {
		delete(r.clients, userID)
	}
}

// IsConnected reports whether a user has a live connection
func (r *Registry) IsConnected(userID uuid.UUID) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Count returns the number of live registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
