package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/pkg/errors"
	"gamerchat-backend/pkg/logger"
	"gamerchat-backend/pkg/metrics"
)

// CallDirectory exposes read access to live call records for relay
// validation. Implemented by the call manager.
type CallDirectory interface {
	Snapshot(callID uuid.UUID) (*domain.Call, bool)
}

// Router delivers frames to connected users. It borrows clients from
// the registry per delivery and never holds a reference across calls.
type Router struct {
	registry *Registry
	calls    CallDirectory
}

// NewRouter creates a Router over the given registry and call directory
func NewRouter(registry *Registry, calls CallDirectory) *Router {
	return &Router{
		registry: registry,
		calls:    calls,
	}
}

// Relay validates a peer-to-peer signaling frame and forwards it to the
// other participant. The payload is not inspected; it is re-tagged with
// the sender and delivered verbatim.
func (r *Router) Relay(fromUserID uuid.UUID, frame *Frame) error {
	call, ok := r.calls.Snapshot(frame.CallID)
	if !ok {
		metrics.SignalRelayErrorsTotal.WithLabelValues(string(errors.ErrCodeCallNotActive)).Inc()
		return errors.CallNotActiveError("unknown")
	}
	if call.IsTerminal() {
		metrics.SignalRelayErrorsTotal.WithLabelValues(string(errors.ErrCodeCallNotActive)).Inc()
		return errors.CallNotActiveError(call.Status)
	}

	if !call.HasParticipant(fromUserID) {
		metrics.SignalRelayErrorsTotal.WithLabelValues(string(errors.ErrCodeNotParticipant)).Inc()
		return errors.NotParticipantError()
	}
	if frame.TargetUserID != call.OtherParticipant(fromUserID) {
		metrics.SignalRelayErrorsTotal.WithLabelValues(string(errors.ErrCodeNotParticipant)).Inc()
		return errors.NotParticipantError()
	}

	delivered := r.Push(frame.TargetUserID, &SignalMessage{
		Type:       frame.Type,
		CallID:     frame.CallID,
		FromUserID: fromUserID,
		Payload:    frame.Payload,
		Candidate:  frame.Candidate,
	})
	if !delivered {
		metrics.SignalRelayErrorsTotal.WithLabelValues(string(errors.ErrCodeRecipientOffline)).Inc()
		return errors.RecipientOfflineError()
	}

	metrics.SignalsRelayedTotal.WithLabelValues(frame.Type).Inc()
	return nil
}

// Push marshals and delivers a server-originated message to a user.
// Returns false when the user has no live connection; pushes to offline
// users are a no-op for the caller.
func (r *Router) Push(userID uuid.UUID, message any) bool {
	client, ok := r.registry.Lookup(userID)
	if !ok {
		return false
	}

	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal outbound message",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return false
	}

	return client.Send(data)
}

// PushIncomingCall notifies the callee that a call is ringing
func (r *Router) PushIncomingCall(calleeID uuid.UUID, call *domain.Call) {
	r.Push(calleeID, &IncomingCallMessage{
		Type: MessageTypeIncomingCall,
		Call: call,
	})
}

// PushCallResponse notifies the caller of the callee's accept/reject
func (r *Router) PushCallResponse(callerID uuid.UUID, action string, call *domain.Call) {
	r.Push(callerID, &CallResponseMessage{
		Type:   MessageTypeCallResponse,
		CallID: call.CallID,
		Action: action,
		Call:   call,
	})
}

// PushCallEnded notifies a participant that the call is over
func (r *Router) PushCallEnded(userID uuid.UUID, call *domain.Call) {
	r.Push(userID, &CallEndedMessage{
		Type:   MessageTypeCallEnded,
		CallID: call.CallID,
		Call:   call,
	})
}
