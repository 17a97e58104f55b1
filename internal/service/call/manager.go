package call

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/errors"
	"gamerchat-backend/pkg/logger"
	"gamerchat-backend/pkg/metrics"
)

// ConnectionChecker reports whether a user currently holds a live
// WebSocket connection. Implemented by the ws registry.
type ConnectionChecker interface {
	IsConnected(userID uuid.UUID) bool
}

// Notifier pushes call lifecycle events to connected users. Implemented
// by the ws router; pushes to offline users are silent no-ops on its
// side.
type Notifier interface {
	PushIncomingCall(calleeID uuid.UUID, call *domain.Call)
	PushCallResponse(callerID uuid.UUID, action string, call *domain.Call)
	PushCallEnded(userID uuid.UUID, call *domain.Call)
}

// HistoryStore persists terminal call records. Implemented by the
// cockroach call repository; may be nil when the database is down.
type HistoryStore interface {
	Record(ctx context.Context, call *domain.Call) error
	GetUserCalls(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Call, error)
}

// Manager owns the call table and is the single writer of call state.
// All transitions happen under one mutex, so concurrent operations on
// the same call serialize and exactly one of two racing end requests
// performs the transition.
type Manager struct {
	mu     sync.Mutex
	calls  map[uuid.UUID]*domain.Call
	timers map[uuid.UUID]*time.Timer

	connections ConnectionChecker
	history     HistoryStore
	notifier    Notifier

	ringTimeout time.Duration
}

// NewManager creates a Manager. The notifier is attached later via
// SetNotifier because the router needs the manager's call table first.
func NewManager(connections ConnectionChecker, history HistoryStore, ringTimeout time.Duration) *Manager {
	if ringTimeout <= 0 {
		ringTimeout = constants.CallRingTimeout
	}
	return &Manager{
		calls:       make(map[uuid.UUID]*domain.Call),
		timers:      make(map[uuid.UUID]*time.Timer),
		connections: connections,
		history:     history,
		ringTimeout: ringTimeout,
	}
}

// SetNotifier attaches the push notifier. Must be called before any
// call is initiated.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// Initiate creates a new ringing call and notifies the callee. The
// REST layer has already verified friendship and block status; this
// layer enforces only connection-level preconditions.
func (m *Manager) Initiate(callerID, calleeID uuid.UUID, kind string) (*domain.Call, error) {
	if callerID == calleeID {
		return nil, errors.SelfCallError()
	}
	if kind != constants.CallKindVoice && kind != constants.CallKindVideo {
		return nil, errors.ValidationError("call kind must be voice or video")
	}
	if !m.connections.IsConnected(calleeID) {
		return nil, errors.CalleeUnreachableError()
	}

	call := &domain.Call{
		CallID:    uuid.New(),
		CallerID:  callerID,
		CalleeID:  calleeID,
		Kind:      kind,
		Status:    constants.CallStatusRinging,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.calls[call.CallID] = call
	callID := call.CallID
	m.timers[callID] = time.AfterFunc(m.ringTimeout, func() {
		m.handleRingTimeout(callID)
	})
	snapshot := copyCall(call)
	m.mu.Unlock()

	metrics.CallsInitiatedTotal.WithLabelValues(kind).Inc()
	metrics.CallsActive.Inc()

	m.notifier.PushIncomingCall(calleeID, snapshot)

	logger.Info("Call initiated",
		zap.String("call_id", call.CallID.String()),
		zap.String("caller_id", callerID.String()),
		zap.String("callee_id", calleeID.String()),
		zap.String("kind", kind))

	return snapshot, nil
}

// Respond answers a ringing call. Only the callee may respond; accept
// connects the call, reject terminates it.
func (m *Manager) Respond(callID, responderID uuid.UUID, accept bool) (*domain.Call, error) {
	m.mu.Lock()

	call, ok := m.calls[callID]
	if !ok {
		m.mu.Unlock()
		return nil, errors.CallNotFoundError()
	}
	if responderID != call.CalleeID {
		m.mu.Unlock()
		return nil, errors.NotParticipantError()
	}
	if call.Status != constants.CallStatusRinging {
		from := call.Status
		m.mu.Unlock()
		target := constants.CallStatusAccepted
		if !accept {
			target = constants.CallStatusRejected
		}
		return nil, errors.InvalidCallTransitionError(from, target)
	}

	m.stopTimerLocked(callID)

	now := time.Now().UTC()
	var action string
	if accept {
		call.Status = constants.CallStatusAccepted
		call.ConnectedAt = &now
		action = constants.CallStatusAccepted
	} else {
		call.Status = constants.CallStatusRejected
		call.EndedAt = &now
		action = constants.CallStatusRejected
	}

	snapshot := copyCall(call)
	callerID := call.CallerID
	m.mu.Unlock()

	if !accept {
		m.finishCall(snapshot)
	}

	m.notifier.PushCallResponse(callerID, action, snapshot)

	logger.Info("Call answered",
		zap.String("call_id", callID.String()),
		zap.String("action", action))

	return snapshot, nil
}

// End terminates a call on behalf of either participant. Ending an
// already-terminal call is a silent no-op so racing hang-ups from both
// sides cannot double-transition. A caller hanging up before the callee
// answers yields a missed call; a callee doing the same rejects it.
func (m *Manager) End(callID, requesterID uuid.UUID) (*domain.Call, error) {
	m.mu.Lock()

	call, ok := m.calls[callID]
	if !ok {
		m.mu.Unlock()
		return nil, errors.CallNotFoundError()
	}
	if !call.HasParticipant(requesterID) {
		m.mu.Unlock()
		return nil, errors.NotParticipantError()
	}
	if call.IsTerminal() {
		snapshot := copyCall(call)
		m.mu.Unlock()
		return snapshot, nil
	}

	m.stopTimerLocked(callID)

	now := time.Now().UTC()
	switch call.Status {
	case constants.CallStatusRinging:
		if requesterID == call.CallerID {
			call.Status = constants.CallStatusMissed
		} else {
			call.Status = constants.CallStatusRejected
		}
	case constants.CallStatusAccepted:
		call.Status = constants.CallStatusEnded
	}
	call.EndedAt = &now
	call.Duration = callDuration(call)

	snapshot := copyCall(call)
	other := call.OtherParticipant(requesterID)
	m.mu.Unlock()

	m.finishCall(snapshot)
	m.notifier.PushCallEnded(other, snapshot)

	logger.Info("Call ended",
		zap.String("call_id", callID.String()),
		zap.String("status", snapshot.Status),
		zap.Int("duration", snapshot.Duration))

	return snapshot, nil
}

// HandleDisconnect tears down any live call the user participates in.
// Ringing calls become missed, connected calls end normally. The peer
// is notified; the disconnected side is gone anyway.
func (m *Manager) HandleDisconnect(userID uuid.UUID) {
	m.mu.Lock()

	type ended struct {
		snapshot *domain.Call
		peer     uuid.UUID
	}
	var terminated []ended

	now := time.Now().UTC()
	for callID, call := range m.calls {
		if call.IsTerminal() || !call.HasParticipant(userID) {
			continue
		}

		m.stopTimerLocked(callID)

		if call.Status == constants.CallStatusRinging {
			call.Status = constants.CallStatusMissed
		} else {
			call.Status = constants.CallStatusEnded
		}
		call.EndedAt = &now
		call.Duration = callDuration(call)

		terminated = append(terminated, ended{
			snapshot: copyCall(call),
			peer:     call.OtherParticipant(userID),
		})
	}

	m.mu.Unlock()

	for _, t := range terminated {
		m.finishCall(t.snapshot)
		m.notifier.PushCallEnded(t.peer, t.snapshot)

		logger.Info("Call terminated by disconnect",
			zap.String("call_id", t.snapshot.CallID.String()),
			zap.String("user_id", userID.String()),
			zap.String("status", t.snapshot.Status))
	}
}

// handleRingTimeout fires when a call rang out unanswered
func (m *Manager) handleRingTimeout(callID uuid.UUID) {
	m.mu.Lock()

	call, ok := m.calls[callID]
	if !ok || call.Status != constants.CallStatusRinging {
		m.mu.Unlock()
		return
	}

	delete(m.timers, callID)

	now := time.Now().UTC()
	call.Status = constants.CallStatusMissed
	call.EndedAt = &now

	snapshot := copyCall(call)
	callerID := call.CallerID
	calleeID := call.CalleeID
	m.mu.Unlock()

	m.finishCall(snapshot)
	m.notifier.PushCallEnded(callerID, snapshot)
	m.notifier.PushCallEnded(calleeID, snapshot)

	logger.Info("Call rang out",
		zap.String("call_id", callID.String()))
}

// Get returns a snapshot of a call record
func (m *Manager) Get(callID uuid.UUID) (*domain.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.calls[callID]
	if !ok {
		return nil, errors.CallNotFoundError()
	}
	return copyCall(call), nil
}

// Snapshot returns a copy of a call record for relay validation
func (m *Manager) Snapshot(callID uuid.UUID) (*domain.Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call, ok := m.calls[callID]
	if !ok {
		return nil, false
	}
	return copyCall(call), true
}

// History returns a user's persisted call history, newest first
func (m *Manager) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Call, error) {
	if m.history == nil {
		return []*domain.Call{}, nil
	}
	return m.history.GetUserCalls(ctx, userID, limit, offset)
}

// stopTimerLocked cancels a pending ring timer. Caller holds m.mu.
func (m *Manager) stopTimerLocked(callID uuid.UUID) {
	if timer, ok := m.timers[callID]; ok {
		timer.Stop()
		delete(m.timers, callID)
	}
}

// finishCall records metrics and persists a terminal call record.
// Persistence is best-effort; call history must not block signaling.
func (m *Manager) finishCall(call *domain.Call) {
	metrics.CallsActive.Dec()
	metrics.CallsCompletedTotal.WithLabelValues(call.Status).Inc()
	if call.Status == constants.CallStatusEnded {
		metrics.CallDurationSeconds.Observe(float64(call.Duration))
	}

	if m.history == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()

		if err := m.history.Record(ctx, call); err != nil {
			logger.Error("Failed to persist call record",
				zap.String("call_id", call.CallID.String()),
				zap.Error(err))
		}
	}()
}

func callDuration(call *domain.Call) int {
	if call.ConnectedAt == nil || call.EndedAt == nil {
		return 0
	}
	return int(call.EndedAt.Sub(*call.ConnectedAt).Seconds())
}

func copyCall(call *domain.Call) *domain.Call {
	c := *call
	return &c
}
