package domain

import (
	"errors"
	"time"
)

// Call types
const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

// Call statuses. Declined and ended are terminal.
const (
	CallStatusPending  = "pending"
	CallStatusAccepted = "accepted"
	CallStatusDeclined = "declined"
	CallStatusEnded    = "ended"
)

// ErrInvalidTransition is returned when a status change is not legal
// from the call's current status.
var ErrInvalidTransition = errors.New("invalid call transition")

// CanTransition reports whether the call state machine allows moving
// from one status to another:
//
//	pending -> accepted -> ended
//	pending -> declined
//	pending -> ended
//
// declined and ended are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case CallStatusPending:
		return to == CallStatusAccepted ||
			to == CallStatusDeclined ||
			to == CallStatusEnded
	case CallStatusAccepted:
		return to == CallStatusEnded
	default:
		return false
	}
}

// Call represents a call session between two peers
type Call struct {
	ID               string     `json:"id"`
	CallerID         string     `json:"callerId"`
	CallerUsername   string     `json:"callerUsername"`
	ReceiverID       string     `json:"receiverId"`
	ReceiverUsername string     `json:"receiverUsername"`
	CallType         string     `json:"callType"` // audio, video
	Status           string     `json:"status"`   // pending, accepted, declined, ended
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	EndedAt          *time.Time `json:"endedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// CallCreate represents data needed to initiate a call
type CallCreate struct {
	CallerID         string
	CallerUsername   string
	ReceiverID       string
	ReceiverUsername string
	CallType         string
}

// Active reports whether the call still occupies a peer: a call is
// active until it reaches a terminal status.
func (c *Call) Active() bool {
	return c.Status == CallStatusPending || c.Status == CallStatusAccepted
}

// Involves reports whether the user is either side of the call.
func (c *Call) Involves(userID string) bool {
	return c.CallerID == userID || c.ReceiverID == userID
}
