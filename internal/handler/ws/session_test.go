package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localsphere-backend/internal/domain"
)

func recvFrame(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case payload := <-c.send:
		var frame map[string]any
		require.NoError(t, json.Unmarshal(payload, &frame))
		return frame
	default:
		t.Fatal("expected a frame, send queue is empty")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected frame: %s", payload)
	default:
	}
}

// join registers a fresh connection and drives the join handshake,
// draining the message_history push.
func (f *hubFixture) join(t *testing.T, userID string, lat, lng, radius float64) *Client {
	t.Helper()
	c := newClient(f.hub, nil)
	f.hub.register(c)
	c.handleEvent(&UserJoinEvent{
		UserID:   userID,
		Location: &domain.Position{Latitude: lat, Longitude: lng},
		Radius:   radius,
	})
	frame := recvFrame(t, c)
	require.Equal(t, EventMessageHistory, frame["type"])
	return c
}

func TestJoinPushesRecentHistory(t *testing.T) {
	f := newHubFixture()

	_, err := f.hub.chatSvc.SendMessage(context.Background(), &domain.MessageCreate{
		UserID:   "earlier",
		Username: "SwiftEagle",
		Content:  "anyone around?",
		Origin:   domain.Position{Latitude: 40.0, Longitude: -73.0},
		Radius:   2.0,
	})
	require.NoError(t, err)

	c := newClient(f.hub, nil)
	f.hub.register(c)
	c.handleEvent(&UserJoinEvent{
		UserID:   "u1",
		Location: &domain.Position{Latitude: 40.001, Longitude: -73.0},
		Radius:   2.0,
	})

	frame := recvFrame(t, c)
	assert.Equal(t, EventMessageHistory, frame["type"])
	messages := frame["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "anyone around?", messages[0].(map[string]any)["content"])
}

func TestJoinHistoryCappedAtTwentyNewest(t *testing.T) {
	f := newHubFixture()
	origin := domain.Position{Latitude: 40.0, Longitude: -73.0}

	// Sequential creates get strictly increasing timestamps.
	for i := 0; i < 25; i++ {
		_, err := f.hub.chatSvc.SendMessage(context.Background(), &domain.MessageCreate{
			UserID:   "earlier",
			Username: "SwiftEagle",
			Content:  fmt.Sprintf("m%d", i),
			Origin:   origin,
			Radius:   2.0,
		})
		require.NoError(t, err)
	}

	c := newClient(f.hub, nil)
	f.hub.register(c)
	c.handleEvent(&UserJoinEvent{UserID: "u1", Location: &origin, Radius: 2.0})

	frame := recvFrame(t, c)
	require.Equal(t, EventMessageHistory, frame["type"])
	messages := frame["messages"].([]any)
	require.Len(t, messages, 20)
	assert.Equal(t, "m24", messages[0].(map[string]any)["content"])
	assert.Equal(t, "m5", messages[19].(map[string]any)["content"])
}

func TestJoinWithoutLocationSkipsHistory(t *testing.T) {
	f := newHubFixture()

	c := newClient(f.hub, nil)
	f.hub.register(c)
	c.handleEvent(&UserJoinEvent{UserID: "u1"})

	assertNoFrame(t, c)

	// The connection is still identified and reachable.
	assert.Same(t, c, f.hub.FindByUserID("u1"))
}

func TestJoinWithInvalidCoordinatesDropped(t *testing.T) {
	f := newHubFixture()

	c := newClient(f.hub, nil)
	f.hub.register(c)
	c.handleEvent(&UserJoinEvent{
		UserID:   "u1",
		Location: &domain.Position{Latitude: 91.0, Longitude: 0},
	})

	assertNoFrame(t, c)
	assert.Nil(t, f.hub.FindByUserID("u1"))
}

func TestSendMessageBeforeJoinDropped(t *testing.T) {
	f := newHubFixture()

	c := newClient(f.hub, nil)
	f.hub.register(c)
	c.handleEvent(&SendMessageEvent{Username: "CoolPanda", Content: "hello?"})

	assertNoFrame(t, c)
	messages, err := f.hub.chatSvc.GetMessages(context.Background(), domain.Position{Latitude: 0, Longitude: 0}, 25000, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSendMessageBroadcastsToNearbyExceptSender(t *testing.T) {
	f := newHubFixture()

	sender := f.join(t, "x", 40.0, -73.0, 2.0)
	near := f.join(t, "y", 40.01, -73.0, 1.0)
	far := f.join(t, "z", 41.0, -73.0, 1.0)

	sender.handleEvent(&SendMessageEvent{Username: "CoolPanda", Content: "hello"})

	frame := recvFrame(t, near)
	assert.Equal(t, EventNewMessage, frame["type"])
	assert.Equal(t, "hello", frame["content"])
	assert.Equal(t, "x", frame["userId"])

	assertNoFrame(t, sender)
	assertNoFrame(t, far)

	// The message outlives the broadcast.
	messages, err := f.hub.chatSvc.GetMessages(context.Background(), domain.Position{Latitude: 40.0, Longitude: -73.0}, 2.0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestTypingExcludedByUserIdentity(t *testing.T) {
	f := newHubFixture()

	chanOne := f.join(t, "same", 40.0, -73.0, 2.0)
	chanTwo := f.join(t, "same", 40.0, -73.0, 2.0)
	other := f.join(t, "other", 40.0, -73.0, 2.0)

	chanOne.handleEvent(&TypingEvent{Kind: EventTypingStart, Username: "CoolPanda"})

	frame := recvFrame(t, other)
	assert.Equal(t, EventTypingStart, frame["type"])
	assert.Equal(t, "same", frame["userId"])

	// The user's second channel must not see its own indicator.
	assertNoFrame(t, chanOne)
	assertNoFrame(t, chanTwo)
}

func TestUpdateLocationMovesBroadcastScope(t *testing.T) {
	f := newHubFixture()

	mover := f.join(t, "mover", 40.0, -73.0, 2.0)
	listener := f.join(t, "listener", 41.0, -73.0, 2.0)

	// Out of range at first.
	mover.handleEvent(&SendMessageEvent{Username: "CoolPanda", Content: "far away"})
	assertNoFrame(t, listener)

	mover.handleEvent(&UpdateLocationEvent{Location: &domain.Position{Latitude: 41.001, Longitude: -73.0}})
	mover.handleEvent(&SendMessageEvent{Username: "CoolPanda", Content: "close now"})

	frame := recvFrame(t, listener)
	assert.Equal(t, "close now", frame["content"])
}

func TestUpdateRadiusRejectsNonPositive(t *testing.T) {
	f := newHubFixture()

	c := f.join(t, "u1", 40.0, -73.0, 2.0)
	c.handleEvent(&UpdateRadiusEvent{Radius: -1})

	_, _, radius := c.identity()
	assert.Equal(t, 2.0, radius)

	c.handleEvent(&UpdateRadiusEvent{Radius: 5.0})
	_, _, radius = c.identity()
	assert.Equal(t, 5.0, radius)
}

func TestInitiateCallDeliversInvite(t *testing.T) {
	f := newHubFixture()

	caller := f.join(t, "caller", 40.0, -73.0, 2.0)
	receiver := f.join(t, "receiver", 41.0, -73.0, 2.0)

	caller.handleEvent(&InitiateCallEvent{
		CallType:         domain.CallTypeVideo,
		CallerUsername:   "CoolPanda",
		ReceiverID:       "receiver",
		ReceiverUsername: "SwiftEagle",
	})

	// Distance does not matter for calls; only the invite addressing does.
	frame := recvFrame(t, receiver)
	assert.Equal(t, EventIncomingCall, frame["type"])
	assert.Equal(t, "caller", frame["callerId"])
	assert.Equal(t, domain.CallTypeVideo, frame["callType"])
	assert.NotEmpty(t, frame["callId"])
	assertNoFrame(t, caller)
}

func TestInitiateCallOfflineReceiverStaysPending(t *testing.T) {
	f := newHubFixture()

	caller := f.join(t, "caller", 40.0, -73.0, 2.0)
	caller.handleEvent(&InitiateCallEvent{
		CallType:       domain.CallTypeAudio,
		CallerUsername: "CoolPanda",
		ReceiverID:     "offline",
	})

	assertNoFrame(t, caller)

	pending, err := f.callRepo.GetActiveCall(context.Background(), "offline")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, domain.CallStatusPending, pending.Status)
}

func TestAcceptCallNotifiesBothPeers(t *testing.T) {
	f := newHubFixture()

	caller := f.join(t, "caller", 40.0, -73.0, 2.0)
	receiver := f.join(t, "receiver", 41.0, -73.0, 2.0)

	caller.handleEvent(&InitiateCallEvent{
		CallType:       domain.CallTypeVideo,
		CallerUsername: "CoolPanda",
		ReceiverID:     "receiver",
	})
	invite := recvFrame(t, receiver)
	callID := invite["callId"].(string)

	receiver.handleEvent(&CallActionEvent{Kind: EventAcceptCall, CallID: callID})

	for _, c := range []*Client{caller, receiver} {
		frame := recvFrame(t, c)
		assert.Equal(t, EventCallAccepted, frame["type"])
		assert.Equal(t, callID, frame["callId"])
		assert.Equal(t, domain.CallStatusAccepted, frame["status"])
	}
}

func TestCallActionOnTerminalCallIsNoOp(t *testing.T) {
	f := newHubFixture()

	caller := f.join(t, "caller", 40.0, -73.0, 2.0)
	receiver := f.join(t, "receiver", 41.0, -73.0, 2.0)

	caller.handleEvent(&InitiateCallEvent{
		CallType:       domain.CallTypeVideo,
		CallerUsername: "CoolPanda",
		ReceiverID:     "receiver",
	})
	invite := recvFrame(t, receiver)
	callID := invite["callId"].(string)

	receiver.handleEvent(&CallActionEvent{Kind: EventEndCall, CallID: callID})
	recvFrame(t, caller)
	recvFrame(t, receiver)

	// Accepting an ended call produces nothing for either peer.
	receiver.handleEvent(&CallActionEvent{Kind: EventAcceptCall, CallID: callID})
	assertNoFrame(t, caller)
	assertNoFrame(t, receiver)

	ended, err := f.callRepo.GetByID(context.Background(), callID)
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusEnded, ended.Status)
}

func TestCallActionUnknownCallIsSilent(t *testing.T) {
	f := newHubFixture()

	c := f.join(t, "caller", 40.0, -73.0, 2.0)
	c.handleEvent(&CallActionEvent{Kind: EventDeclineCall, CallID: "no-such-call"})

	assertNoFrame(t, c)
}

func TestWebRTCSignalForwardedVerbatim(t *testing.T) {
	f := newHubFixture()

	source := f.join(t, "source", 40.0, -73.0, 2.0)
	target := f.join(t, "target", 41.0, -73.0, 2.0)

	source.handleEvent(&WebRTCSignalEvent{
		Kind:         EventWebRTCOffer,
		TargetUserID: "target",
		Data:         json.RawMessage(`{"sdp":"v=0","extensions":{"foo":1}}`),
	})

	frame := recvFrame(t, target)
	assert.Equal(t, EventWebRTCOffer, frame["type"])
	assert.Equal(t, "v=0", frame["sdp"])
	assert.Equal(t, float64(1), frame["extensions"].(map[string]any)["foo"])
	assertNoFrame(t, source)
}

func TestWebRTCSignalMissingTargetSilent(t *testing.T) {
	f := newHubFixture()

	source := f.join(t, "source", 40.0, -73.0, 2.0)
	source.handleEvent(&WebRTCSignalEvent{
		Kind:         EventWebRTCICE,
		TargetUserID: "gone",
		Data:         json.RawMessage(`{"candidate":"..."}`),
	})

	assertNoFrame(t, source)
}
