package ws

import (
	"encoding/json"
	"fmt"

	"localsphere-backend/internal/domain"
)

// Inbound event types
const (
	EventUserJoin       = "user_join"
	EventSendMessage    = "send_message"
	EventTypingStart    = "typing_start"
	EventTypingStop     = "typing_stop"
	EventUpdateLocation = "update_location"
	EventUpdateRadius   = "update_radius"
	EventInitiateCall   = "initiate_call"
	EventAcceptCall     = "accept_call"
	EventDeclineCall    = "decline_call"
	EventEndCall        = "end_call"
	EventWebRTCOffer    = "webrtc_offer"
	EventWebRTCAnswer   = "webrtc_answer"
	EventWebRTCICE      = "webrtc_ice_candidate"
)

// Outbound event types
const (
	EventMessageHistory = "message_history"
	EventNewMessage     = "new_message"
	EventIncomingCall   = "incoming_call"
	EventCallAccepted   = "call_accepted"
	EventCallDeclined   = "call_declined"
	EventCallEnded      = "call_ended"
)

// Event is the closed set of inbound frame variants. Frames are decoded
// once at the boundary into one of these, so the session dispatcher can
// switch exhaustively on concrete types instead of raw type strings.
type Event interface {
	isEvent()
}

// UserJoinEvent announces identity, position and subscription radius
type UserJoinEvent struct {
	UserID   string           `json:"userId"`
	Location *domain.Position `json:"location"`
	Radius   float64          `json:"radius"`
}

// SendMessageEvent carries a new broadcast message
type SendMessageEvent struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// TypingEvent is a typing_start or typing_stop indicator. Ephemeral:
// never persisted.
type TypingEvent struct {
	Kind     string `json:"-"`
	Username string `json:"username"`
}

// UpdateLocationEvent mutates the connection's position
type UpdateLocationEvent struct {
	Location *domain.Position `json:"location"`
}

// UpdateRadiusEvent mutates the connection's subscription radius
type UpdateRadiusEvent struct {
	Radius float64 `json:"radius"`
}

// InitiateCallEvent starts a call toward a specific peer
type InitiateCallEvent struct {
	CallType         string `json:"callType"`
	CallerUsername   string `json:"callerUsername"`
	ReceiverID       string `json:"receiverId"`
	ReceiverUsername string `json:"receiverUsername"`
}

// CallActionEvent is an accept_call, decline_call or end_call frame
type CallActionEvent struct {
	Kind   string `json:"-"`
	CallID string `json:"callId"`
}

// WebRTCSignalEvent is an opaque offer/answer/ICE payload addressed to
// one peer. Data is forwarded verbatim and never inspected.
type WebRTCSignalEvent struct {
	Kind         string          `json:"-"`
	TargetUserID string          `json:"targetUserId"`
	Data         json.RawMessage `json:"data"`
}

func (*UserJoinEvent) isEvent()       {}
func (*SendMessageEvent) isEvent()    {}
func (*TypingEvent) isEvent()         {}
func (*UpdateLocationEvent) isEvent() {}
func (*UpdateRadiusEvent) isEvent()   {}
func (*InitiateCallEvent) isEvent()   {}
func (*CallActionEvent) isEvent()     {}
func (*WebRTCSignalEvent) isEvent()   {}

// DecodeEvent parses an inbound frame into its typed variant. Unknown
// or malformed frames return an error; the caller logs and keeps the
// connection open.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	switch head.Type {
	case EventUserJoin:
		ev := &UserJoinEvent{}
		return ev, json.Unmarshal(data, ev)
	case EventSendMessage:
		ev := &SendMessageEvent{}
		return ev, json.Unmarshal(data, ev)
	case EventTypingStart, EventTypingStop:
		ev := &TypingEvent{Kind: head.Type}
		return ev, json.Unmarshal(data, ev)
	case EventUpdateLocation:
		ev := &UpdateLocationEvent{}
		return ev, json.Unmarshal(data, ev)
	case EventUpdateRadius:
		ev := &UpdateRadiusEvent{}
		return ev, json.Unmarshal(data, ev)
	case EventInitiateCall:
		ev := &InitiateCallEvent{}
		return ev, json.Unmarshal(data, ev)
	case EventAcceptCall, EventDeclineCall, EventEndCall:
		ev := &CallActionEvent{Kind: head.Type}
		return ev, json.Unmarshal(data, ev)
	case EventWebRTCOffer, EventWebRTCAnswer, EventWebRTCICE:
		ev := &WebRTCSignalEvent{Kind: head.Type}
		return ev, json.Unmarshal(data, ev)
	default:
		return nil, fmt.Errorf("unknown event type %q", head.Type)
	}
}

// messageHistoryPayload is pushed to a freshly joined connection
type messageHistoryPayload struct {
	Type     string            `json:"type"`
	Messages []*domain.Message `json:"messages"`
}

// newMessagePayload flattens the message fields next to the type tag
type newMessagePayload struct {
	Type string `json:"type"`
	*domain.Message
}

// typingPayload identifies who is typing
type typingPayload struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// incomingCallPayload invites the receiver to answer
type incomingCallPayload struct {
	Type           string `json:"type"`
	CallID         string `json:"callId"`
	CallerID       string `json:"callerId"`
	CallerUsername string `json:"callerUsername"`
	CallType       string `json:"callType"`
}

// callUpdatePayload notifies both peers of a status transition
type callUpdatePayload struct {
	Type   string `json:"type"`
	CallID string `json:"callId"`
	Status string `json:"status"`
}

func encodeMessageHistory(messages []*domain.Message) ([]byte, error) {
	if messages == nil {
		messages = []*domain.Message{}
	}
	return json.Marshal(&messageHistoryPayload{Type: EventMessageHistory, Messages: messages})
}

func encodeNewMessage(message *domain.Message) ([]byte, error) {
	return json.Marshal(&newMessagePayload{Type: EventNewMessage, Message: message})
}

func encodeTyping(kind, userID, username string) ([]byte, error) {
	return json.Marshal(&typingPayload{Type: kind, UserID: userID, Username: username})
}

func encodeIncomingCall(call *domain.Call) ([]byte, error) {
	return json.Marshal(&incomingCallPayload{
		Type:           EventIncomingCall,
		CallID:         call.ID,
		CallerID:       call.CallerID,
		CallerUsername: call.CallerUsername,
		CallType:       call.CallType,
	})
}

func encodeCallUpdate(eventType string, call *domain.Call) ([]byte, error) {
	return json.Marshal(&callUpdatePayload{Type: eventType, CallID: call.ID, Status: call.Status})
}

// encodeSignalForward splices the event type into the opaque signaling
// payload, which must be a JSON object. The payload contents are never
// interpreted beyond that.
func encodeSignalForward(eventType string, data json.RawMessage) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("signaling payload is not an object: %w", err)
		}
	}
	typeTag, err := json.Marshal(eventType)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeTag
	return json.Marshal(fields)
}
