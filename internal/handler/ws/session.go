package ws

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"localsphere-backend/internal/domain"
	"localsphere-backend/internal/service/call"
	"localsphere-backend/pkg/logger"
	"localsphere-backend/pkg/metrics"
)

// handleEvent routes one decoded frame. Every branch follows the same
// error discipline: events missing required session state are dropped,
// target-not-found is silent, and nothing here can take the connection
// down.
func (c *Client) handleEvent(event Event) {
	ctx := context.Background()

	switch ev := event.(type) {
	case *UserJoinEvent:
		c.handleUserJoin(ctx, ev)
	case *SendMessageEvent:
		c.handleSendMessage(ctx, ev)
	case *TypingEvent:
		c.handleTyping(ctx, ev)
	case *UpdateLocationEvent:
		c.handleUpdateLocation(ctx, ev)
	case *UpdateRadiusEvent:
		c.handleUpdateRadius(ctx, ev)
	case *InitiateCallEvent:
		c.handleInitiateCall(ctx, ev)
	case *CallActionEvent:
		c.handleCallAction(ctx, ev)
	case *WebRTCSignalEvent:
		c.handleWebRTCSignal(ev)
	}
}

func (c *Client) handleUserJoin(ctx context.Context, ev *UserJoinEvent) {
	if ev.UserID == "" {
		return
	}
	pos := ev.Location
	if pos != nil && !pos.Valid() {
		logger.Warn("join with invalid coordinates dropped", zap.String("user_id", ev.UserID))
		return
	}

	c.setIdentity(ev.UserID, pos, ev.Radius)
	_, _, radius := c.identity()

	if err := c.hub.userSvc.RecordJoin(ctx, ev.UserID, "", pos, radius); err != nil {
		logger.Warn("failed to record join", zap.String("user_id", ev.UserID), zap.Error(err))
	}
	if c.hub.presence != nil {
		if err := c.hub.presence.SetUserOnline(ctx, ev.UserID); err != nil {
			logger.Warn("failed to set presence", zap.String("user_id", ev.UserID), zap.Error(err))
		}
	}

	// Push the recent in-range messages to the new connection.
	if pos == nil {
		return
	}
	history, err := c.hub.chatSvc.History(ctx, *pos, radius)
	if err != nil {
		logger.Warn("failed to load message history", zap.String("user_id", ev.UserID), zap.Error(err))
		return
	}
	payload, err := encodeMessageHistory(history)
	if err != nil {
		logger.Error("failed to encode message history", zap.Error(err))
		return
	}
	c.trySend(payload)
}

func (c *Client) handleSendMessage(ctx context.Context, ev *SendMessageEvent) {
	userID, pos, radius := c.identity()
	if userID == "" || pos == nil {
		// Message before join: dropped.
		return
	}

	message, err := c.hub.chatSvc.SendMessage(ctx, &domain.MessageCreate{
		UserID:   userID,
		Username: ev.Username,
		Content:  ev.Content,
		Origin:   *pos,
		Radius:   radius,
	})
	if err != nil {
		logger.Error("failed to persist message", zap.String("user_id", userID), zap.Error(err))
		return
	}
	metrics.MessagesCreatedTotal.Inc()

	payload, err := encodeNewMessage(message)
	if err != nil {
		logger.Error("failed to encode message", zap.Error(err))
		return
	}
	// The sender's own channel is excluded; its UI renders the message
	// optimistically on send. Other channels of the same user still
	// receive it.
	c.hub.BroadcastNearby(*pos, radius, payload, c, "")
}

func (c *Client) handleTyping(ctx context.Context, ev *TypingEvent) {
	userID, pos, radius := c.identity()
	if userID == "" || pos == nil {
		return
	}

	// Typing counts as activity for soft liveness.
	if err := c.hub.userSvc.Touch(ctx, userID); err != nil {
		logger.Debug("failed to touch user", zap.String("user_id", userID), zap.Error(err))
	}

	payload, err := encodeTyping(ev.Kind, userID, ev.Username)
	if err != nil {
		logger.Error("failed to encode typing event", zap.Error(err))
		return
	}
	// Exclusion is by user identity, not connection handle: a second
	// channel for the same user must not see its own typing indicator.
	c.hub.BroadcastNearby(*pos, radius, payload, nil, userID)
}

func (c *Client) handleUpdateLocation(ctx context.Context, ev *UpdateLocationEvent) {
	if ev.Location == nil || !ev.Location.Valid() {
		return
	}
	c.setPosition(ev.Location)

	userID, _, _ := c.identity()
	if userID == "" {
		return
	}
	if err := c.hub.userSvc.UpdateLocation(ctx, userID, *ev.Location); err != nil {
		logger.Warn("failed to update location", zap.String("user_id", userID), zap.Error(err))
	}
	if c.hub.presence != nil {
		if err := c.hub.presence.RefreshPresence(ctx, userID); err != nil {
			logger.Debug("failed to refresh presence", zap.Error(err))
		}
	}
}

func (c *Client) handleUpdateRadius(ctx context.Context, ev *UpdateRadiusEvent) {
	if ev.Radius <= 0 {
		return
	}
	c.setRadius(ev.Radius)

	userID, _, _ := c.identity()
	if userID == "" {
		return
	}
	if err := c.hub.userSvc.UpdateRadius(ctx, userID, ev.Radius); err != nil {
		logger.Warn("failed to update radius", zap.String("user_id", userID), zap.Error(err))
	}
}

func (c *Client) handleInitiateCall(ctx context.Context, ev *InitiateCallEvent) {
	userID, _, _ := c.identity()
	if userID == "" || ev.ReceiverID == "" {
		return
	}

	newCall, err := c.hub.callSvc.Initiate(ctx, &domain.CallCreate{
		CallerID:         userID,
		CallerUsername:   ev.CallerUsername,
		ReceiverID:       ev.ReceiverID,
		ReceiverUsername: ev.ReceiverUsername,
		CallType:         ev.CallType,
	})
	if err != nil {
		// Busy peers and bad call types are dropped without a reply;
		// there is no error channel back to the caller.
		logger.Debug("call not initiated", zap.String("caller_id", userID), zap.Error(err))
		return
	}
	metrics.CallsTotal.WithLabelValues(newCall.CallType).Inc()

	payload, err := encodeIncomingCall(newCall)
	if err != nil {
		logger.Error("failed to encode incoming call", zap.Error(err))
		return
	}
	// An offline receiver leaves the call pending; nothing is sent and
	// no error is surfaced.
	c.hub.SendToUser(ev.ReceiverID, payload)
}

func (c *Client) handleCallAction(ctx context.Context, ev *CallActionEvent) {
	if ev.CallID == "" {
		return
	}

	var (
		updated   *domain.Call
		err       error
		eventType string
	)
	switch ev.Kind {
	case EventAcceptCall:
		updated, err = c.hub.callSvc.Accept(ctx, ev.CallID)
		eventType = EventCallAccepted
	case EventDeclineCall:
		updated, err = c.hub.callSvc.Decline(ctx, ev.CallID)
		eventType = EventCallDeclined
	case EventEndCall:
		updated, err = c.hub.callSvc.End(ctx, ev.CallID)
		eventType = EventCallEnded
	default:
		return
	}
	if err != nil {
		// Unknown calls and illegal transitions (accepting an ended
		// call, declining twice) are no-ops.
		if errors.Is(err, call.ErrCallNotFound) || errors.Is(err, call.ErrInvalidTransition) {
			logger.Debug("call action ignored", zap.String("call_id", ev.CallID), zap.Error(err))
		} else {
			logger.Warn("call action failed", zap.String("call_id", ev.CallID), zap.Error(err))
		}
		return
	}

	payload, err := encodeCallUpdate(eventType, updated)
	if err != nil {
		logger.Error("failed to encode call update", zap.Error(err))
		return
	}
	// Both sides hear about the transition, whichever of them is open.
	c.hub.SendToUser(updated.CallerID, payload)
	c.hub.SendToUser(updated.ReceiverID, payload)
}

// handleWebRTCSignal forwards an offer/answer/ICE payload verbatim to
// the target's open connection. No call state is touched and the
// payload is never parsed beyond the envelope splice; loss is silent
// when the target is gone.
func (c *Client) handleWebRTCSignal(ev *WebRTCSignalEvent) {
	if ev.TargetUserID == "" {
		return
	}

	payload, err := encodeSignalForward(ev.Kind, ev.Data)
	if err != nil {
		logger.Warn("invalid signaling payload dropped", zap.Error(err))
		return
	}
	c.hub.SendToUser(ev.TargetUserID, payload)
}
