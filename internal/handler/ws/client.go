package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/logger"
)

// Client is one WebSocket connection. A connection starts
// unauthenticated; the first frame must be an auth frame within the
// grace period, after which the client is bound to a user and placed in
// the registry. readPump is the only goroutine that mutates client
// state.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	userID uuid.UUID

	authenticated bool

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, constants.WebSocketSendBuffer),
		done: make(chan struct{}),
	}
}

// Send queues a message for delivery. It never blocks: a client whose
// buffer is full is considered dead and gets closed. Returns false when
// the message was not queued.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		// Slow consumer; drop the connection rather than block the sender
		c.Close()
		return false
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// any number of times; the underlying close happens exactly once, and
// cleanup runs on the client's own read loop.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) sendJSON(message any) bool {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", zap.Error(err))
		return false
	}
	return c.Send(data)
}

func (c *Client) sendError(code, reason string) {
	c.sendJSON(&ErrorMessage{
		Type:   MessageTypeError,
		Code:   code,
		Reason: reason,
	})
}

// readPump reads frames from the socket until it dies. The read
// deadline doubles as the liveness check: before auth it is the auth
// grace period, afterwards the heartbeat timeout, refreshed on every
// frame.
func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(constants.WebSocketMaxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.authGracePeriod))

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket connection closed",
					zap.String("user_id", c.userID.String()),
					zap.Error(err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logger.Warn("Invalid frame from WebSocket",
				zap.String("user_id", c.userID.String()),
				zap.Error(err))
			continue
		}

		if !c.authenticated {
			if !c.hub.handleAuth(c, &frame) {
				return
			}
			// A pre-auth heartbeat leaves the grace deadline in place;
			// only a successful auth switches to the heartbeat timeout
			if c.authenticated {
				c.conn.SetReadDeadline(time.Now().Add(c.hub.heartbeatTimeout))
			}
			continue
		}

		c.conn.SetReadDeadline(time.Now().Add(c.hub.heartbeatTimeout))
		c.hub.handleFrame(c, &frame)
	}
}

// writePump serializes all writes to the socket
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}
}
