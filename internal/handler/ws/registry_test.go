package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return &Client{
		send: make(chan []byte, 8),
		done: make(chan struct{}),
	}
}

func isClosed(c *Client) bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	client := testClient()

	_, ok := registry.Lookup(userID)
	assert.False(t, ok)

	registry.Register(userID, client)

	found, ok := registry.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, client, found)
	assert.True(t, registry.IsConnected(userID))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryReplaceClosesOldConnection(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	old := testClient()
	registry.Register(userID, old)

	replacement := testClient()
	registry.Register(userID, replacement)

	assert.True(t, isClosed(old), "old connection must be closed on replace")
	assert.False(t, isClosed(replacement))

	found, ok := registry.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, replacement, found)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryRemoveSameClientOnly(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	old := testClient()
	registry.Register(userID, old)

	replacement := testClient()
	registry.Register(userID, replacement)

	// The replaced connection cleaning up after itself must not evict
	// its replacement
	registry.Remove(userID, old)

	found, ok := registry.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, replacement, found)

	registry.Remove(userID, replacement)
	_, ok = registry.Lookup(userID)
	assert.False(t, ok)

	// Removing an absent entry is a no-op
	registry.Remove(userID, replacement)
	assert.Equal(t, 0, registry.Count())
}

func TestClientCloseIsIdempotent(t *testing.T) {
	client := testClient()

	client.Close()
	client.Close()

	assert.True(t, isClosed(client))
	assert.False(t, client.Send([]byte(`{}`)), "send after close must fail")
}

func TestClientSendFullBufferClosesClient(t *testing.T) {
	client := &Client{
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}

	assert.True(t, client.Send([]byte(`a`)))
	assert.False(t, client.Send([]byte(`b`)), "send into a full buffer must fail")
	assert.True(t, isClosed(client), "a slow consumer gets dropped")
}
