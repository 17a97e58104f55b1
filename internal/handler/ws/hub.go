package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/env"
	"gamerchat-backend/pkg/errors"
	"gamerchat-backend/pkg/logger"
	"gamerchat-backend/pkg/metrics"
)

// Authenticator verifies a bearer token presented in an auth frame and
// returns the user it belongs to. Implemented by the auth service,
// which checks both the JWT signature and session revocation.
type Authenticator interface {
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)
}

// CallSessions receives disconnect notifications so live calls can be
// torn down when a participant drops. Implemented by the call manager.
type CallSessions interface {
	HandleDisconnect(userID uuid.UUID)
}

// PresenceTracker mirrors connection liveness into shared presence
// state. Implemented by the redis presence repository.
type PresenceTracker interface {
	SetUserOnline(ctx context.Context, userID uuid.UUID) error
	SetUserOffline(ctx context.Context, userID uuid.UUID) error
	RefreshPresence(ctx context.Context, userID uuid.UUID) error
}

// HubOptions carries the tunables for connection lifecycle handling
type HubOptions struct {
	AuthGracePeriod  time.Duration
	HeartbeatTimeout time.Duration
	AllowedOrigins   []string
}

// Hub owns the WebSocket endpoint: it upgrades connections, runs the
// auth handshake, dispatches authenticated frames, and drives cleanup
// when connections die.
type Hub struct {
	registry *Registry
	router   *Router
	auth     Authenticator
	calls    CallSessions
	presence PresenceTracker

	authGracePeriod  time.Duration
	heartbeatTimeout time.Duration

	upgrader websocket.Upgrader

	// Connection cap, released on disconnect
	maxConnections int
	semaphore      chan struct{}
}

// NewHub creates a Hub. Zero durations in opts fall back to defaults.
func NewHub(registry *Registry, router *Router, auth Authenticator, calls CallSessions, presence PresenceTracker, opts HubOptions) *Hub {
	if opts.AuthGracePeriod <= 0 {
		opts.AuthGracePeriod = constants.WebSocketAuthGracePeriod
	}
	if opts.HeartbeatTimeout <= 0 {
		opts.HeartbeatTimeout = constants.WebSocketHeartbeatTimeout
	}

	allowed := make(map[string]bool, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		allowed[origin] = true
	}

	maxConns := env.GetInt("WS_MAX_CONNECTIONS", 10000)

	return &Hub{
		registry:         registry,
		router:           router,
		auth:             auth,
		calls:            calls,
		presence:         presence,
		authGracePeriod:  opts.AuthGracePeriod,
		heartbeatTimeout: opts.HeartbeatTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return false
				}
				return allowed[origin]
			},
		},
		maxConnections: maxConns,
		semaphore:      make(chan struct{}, maxConns),
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection. The
// connection is anonymous until its first auth frame; no HTTP auth
// middleware runs on this route.
func (h *Hub) ServeWS(c *gin.Context) {
	select {
	case h.semaphore <- struct{}{}:
	default:
		logger.Warn("WebSocket connection rejected: max connections reached",
			zap.Int("max_connections", h.maxConnections))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server at capacity, please try again later"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		<-h.semaphore
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h, conn)

	go client.writePump()
	go client.readPump()
}

// handleAuth processes frames on a connection that has not yet
// authenticated. Returns false when the connection must close.
// Heartbeats are answered in any state; they keep the socket useful to
// a client that pings before logging in, but they do not extend the
// auth grace period.
func (h *Hub) handleAuth(c *Client, frame *Frame) bool {
	if frame.Type == FrameTypeHeartbeat {
		c.sendJSON(&HeartbeatResponseMessage{
			Type:      MessageTypeHeartbeatResponse,
			Timestamp: time.Now().UTC(),
		})
		return true
	}

	if frame.Type != FrameTypeAuth {
		metrics.WebSocketAuthFailuresTotal.Inc()
		c.sendJSON(&AuthErrorMessage{
			Type:   MessageTypeAuthError,
			Reason: "first frame must be auth",
		})
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	userID, err := h.auth.VerifyToken(ctx, frame.Token)
	if err != nil {
		metrics.WebSocketAuthFailuresTotal.Inc()
		logger.Debug("WebSocket auth rejected", zap.Error(err))
		c.sendJSON(&AuthErrorMessage{
			Type:   MessageTypeAuthError,
			Reason: "invalid or expired token",
		})
		return false
	}

	c.userID = userID
	c.authenticated = true
	h.registry.Register(userID, c)
	metrics.WebSocketConnectionsActive.Inc()

	if err := h.presence.SetUserOnline(ctx, userID); err != nil {
		logger.Warn("Failed to mark user online",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	c.sendJSON(&AuthSuccessMessage{
		Type:   MessageTypeAuthSuccess,
		UserID: userID,
	})

	logger.Info("WebSocket authenticated",
		zap.String("user_id", userID.String()))

	return true
}

// handleFrame dispatches one authenticated frame. Frames are processed
// in arrival order on the client's read loop, so signaling between a
// pair of users stays ordered.
func (h *Hub) handleFrame(c *Client, frame *Frame) {
	switch frame.Type {
	case FrameTypeHeartbeat:
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		if err := h.presence.RefreshPresence(ctx, c.userID); err != nil {
			logger.Warn("Failed to refresh presence",
				zap.String("user_id", c.userID.String()),
				zap.Error(err))
		}
		cancel()

		c.sendJSON(&HeartbeatResponseMessage{
			Type:      MessageTypeHeartbeatResponse,
			Timestamp: time.Now().UTC(),
		})

	case FrameTypeCallSignal, FrameTypeICECandidate:
		if err := h.router.Relay(c.userID, frame); err != nil {
			appErr := errors.GetAppError(err)
			c.sendError(string(appErr.Code), appErr.Message)
		}

	case FrameTypeAuth:
		// Already authenticated; nothing to do

	default:
		logger.Debug("Unknown frame type",
			zap.String("user_id", c.userID.String()),
			zap.String("frame_type", frame.Type))
	}
}

// disconnect runs the cleanup path for a dying connection. It is called
// exactly once per connection, from readPump's defer, whether the close
// came from the peer, a deadline, or a replacement connection.
func (h *Hub) disconnect(c *Client) {
	<-h.semaphore

	if !c.authenticated {
		return
	}

	h.registry.Remove(c.userID, c)
	metrics.WebSocketConnectionsActive.Dec()

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	// A replacement connection may already be registered; only clear
	// presence and tear down live calls when the user is truly gone.
	// A user reconnecting mid-call keeps the call alive.
	if _, stillConnected := h.registry.Lookup(c.userID); !stillConnected {
		if err := h.presence.SetUserOffline(ctx, c.userID); err != nil {
			logger.Warn("Failed to mark user offline",
				zap.String("user_id", c.userID.String()),
				zap.Error(err))
		}

		h.calls.HandleDisconnect(c.userID)
	}

	logger.Info("WebSocket disconnected",
		zap.String("user_id", c.userID.String()))
}
