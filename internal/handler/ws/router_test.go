package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/errors"
)

// stubDirectory serves call snapshots from a fixed map
type stubDirectory struct {
	calls map[uuid.UUID]*domain.Call
}

func (d *stubDirectory) Snapshot(callID uuid.UUID) (*domain.Call, bool) {
	call, ok := d.calls[callID]
	if !ok {
		return nil, false
	}
	c := *call
	return &c, true
}

func ringingCall(caller, callee uuid.UUID) *domain.Call {
	return &domain.Call{
		CallID:    uuid.New(),
		CallerID:  caller,
		CalleeID:  callee,
		Kind:      constants.CallKindVideo,
		Status:    constants.CallStatusRinging,
		CreatedAt: time.Now().UTC(),
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	default:
		t.Fatal("expected a queued message")
		return nil
	}
}

func TestRelayForwardsVerbatimPayload(t *testing.T) {
	caller := uuid.New()
	callee := uuid.New()
	call := ringingCall(caller, callee)

	registry := NewRegistry()
	callerClient := testClient()
	calleeClient := testClient()
	registry.Register(caller, callerClient)
	registry.Register(callee, calleeClient)

	router := NewRouter(registry, &stubDirectory{calls: map[uuid.UUID]*domain.Call{call.CallID: call}})

	payload := json.RawMessage(`{"sdp":"v=0...","kind":"offer"}`)
	err := router.Relay(caller, &Frame{
		Type:         FrameTypeCallSignal,
		CallID:       call.CallID,
		TargetUserID: callee,
		Payload:      payload,
	})
	require.NoError(t, err)

	var relayed SignalMessage
	require.NoError(t, json.Unmarshal(receive(t, calleeClient), &relayed))

	assert.Equal(t, MessageTypeCallSignal, relayed.Type)
	assert.Equal(t, call.CallID, relayed.CallID)
	assert.Equal(t, caller, relayed.FromUserID)
	assert.JSONEq(t, string(payload), string(relayed.Payload))

	// Nothing comes back to the sender
	select {
	case <-callerClient.send:
		t.Fatal("sender must not receive its own signal")
	default:
	}
}

func TestRelayICECandidate(t *testing.T) {
	caller := uuid.New()
	callee := uuid.New()
	call := ringingCall(caller, callee)
	call.Status = constants.CallStatusAccepted

	registry := NewRegistry()
	callerClient := testClient()
	registry.Register(caller, callerClient)
	registry.Register(callee, testClient())

	router := NewRouter(registry, &stubDirectory{calls: map[uuid.UUID]*domain.Call{call.CallID: call}})

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 UDP 2122252543 192.0.2.1 54400 typ host"}`)
	err := router.Relay(callee, &Frame{
		Type:         FrameTypeICECandidate,
		CallID:       call.CallID,
		TargetUserID: caller,
		Candidate:    candidate,
	})
	require.NoError(t, err)

	var relayed SignalMessage
	require.NoError(t, json.Unmarshal(receive(t, callerClient), &relayed))
	assert.Equal(t, MessageTypeICECandidate, relayed.Type)
	assert.Equal(t, callee, relayed.FromUserID)
	assert.JSONEq(t, string(candidate), string(relayed.Candidate))
}

func TestRelayValidation(t *testing.T) {
	caller := uuid.New()
	callee := uuid.New()
	outsider := uuid.New()
	call := ringingCall(caller, callee)

	registry := NewRegistry()
	registry.Register(caller, testClient())
	registry.Register(callee, testClient())
	registry.Register(outsider, testClient())

	directory := &stubDirectory{calls: map[uuid.UUID]*domain.Call{call.CallID: call}}
	router := NewRouter(registry, directory)

	t.Run("unknown call", func(t *testing.T) {
		err := router.Relay(caller, &Frame{
			Type:         FrameTypeCallSignal,
			CallID:       uuid.New(),
			TargetUserID: callee,
		})
		assert.True(t, errors.HasCode(err, errors.ErrCodeCallNotActive))
	})

	t.Run("terminal call", func(t *testing.T) {
		ended := ringingCall(caller, callee)
		ended.Status = constants.CallStatusEnded
		directory.calls[ended.CallID] = ended

		err := router.Relay(caller, &Frame{
			Type:         FrameTypeCallSignal,
			CallID:       ended.CallID,
			TargetUserID: callee,
		})
		assert.True(t, errors.HasCode(err, errors.ErrCodeCallNotActive))
	})

	t.Run("sender outside the call", func(t *testing.T) {
		err := router.Relay(outsider, &Frame{
			Type:         FrameTypeCallSignal,
			CallID:       call.CallID,
			TargetUserID: callee,
		})
		assert.True(t, errors.HasCode(err, errors.ErrCodeNotParticipant))
	})

	t.Run("target outside the call", func(t *testing.T) {
		err := router.Relay(caller, &Frame{
			Type:         FrameTypeCallSignal,
			CallID:       call.CallID,
			TargetUserID: outsider,
		})
		assert.True(t, errors.HasCode(err, errors.ErrCodeNotParticipant))
	})

	t.Run("recipient offline", func(t *testing.T) {
		offlineCallee := uuid.New()
		offlineCall := ringingCall(caller, offlineCallee)
		directory.calls[offlineCall.CallID] = offlineCall

		err := router.Relay(caller, &Frame{
			Type:         FrameTypeCallSignal,
			CallID:       offlineCall.CallID,
			TargetUserID: offlineCallee,
		})
		assert.True(t, errors.HasCode(err, errors.ErrCodeRecipientOffline))
	})
}

func TestPush(t *testing.T) {
	registry := NewRegistry()
	router := NewRouter(registry, &stubDirectory{calls: map[uuid.UUID]*domain.Call{}})

	userID := uuid.New()
	client := testClient()
	registry.Register(userID, client)

	t.Run("delivers to a connected user", func(t *testing.T) {
		delivered := router.Push(userID, &HeartbeatResponseMessage{
			Type:      MessageTypeHeartbeatResponse,
			Timestamp: time.Now().UTC(),
		})
		assert.True(t, delivered)

		var msg HeartbeatResponseMessage
		require.NoError(t, json.Unmarshal(receive(t, client), &msg))
		assert.Equal(t, MessageTypeHeartbeatResponse, msg.Type)
	})

	t.Run("offline user is a silent no-op", func(t *testing.T) {
		delivered := router.Push(uuid.New(), &AuthSuccessMessage{Type: MessageTypeAuthSuccess})
		assert.False(t, delivered)
	})
}

func TestPushCallLifecycleMessages(t *testing.T) {
	registry := NewRegistry()
	router := NewRouter(registry, &stubDirectory{calls: map[uuid.UUID]*domain.Call{}})

	caller := uuid.New()
	callee := uuid.New()
	callerClient := testClient()
	calleeClient := testClient()
	registry.Register(caller, callerClient)
	registry.Register(callee, calleeClient)

	call := ringingCall(caller, callee)

	router.PushIncomingCall(callee, call)
	var incoming IncomingCallMessage
	require.NoError(t, json.Unmarshal(receive(t, calleeClient), &incoming))
	assert.Equal(t, MessageTypeIncomingCall, incoming.Type)
	assert.Equal(t, call.CallID, incoming.Call.CallID)

	router.PushCallResponse(caller, constants.CallStatusAccepted, call)
	var response CallResponseMessage
	require.NoError(t, json.Unmarshal(receive(t, callerClient), &response))
	assert.Equal(t, MessageTypeCallResponse, response.Type)
	assert.Equal(t, constants.CallStatusAccepted, response.Action)

	router.PushCallEnded(callee, call)
	var endedMsg CallEndedMessage
	require.NoError(t, json.Unmarshal(receive(t, calleeClient), &endedMsg))
	assert.Equal(t, MessageTypeCallEnded, endedMsg.Type)
	assert.Equal(t, call.CallID, endedMsg.CallID)
}
