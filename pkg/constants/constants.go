// Package constants defines application-wide constants for timeouts, limits, and durations.
package constants

import "time"

// Time-related constants
const (
	// WebSocketPingInterval is the interval for WebSocket ping/pong
	WebSocketPingInterval = 60 * time.Second

	// WebSocketWriteTimeout bounds a single frame write
	WebSocketWriteTimeout = 10 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful server shutdown
	GracefulShutdownTimeout = 30 * time.Second
)

// Message store constants
const (
	// MessageEvictionInterval is how often expired messages are reclaimed
	MessageEvictionInterval = time.Hour

	// MessageHistoryLimit is the number of recent messages pushed on join
	MessageHistoryLimit = 20

	// DefaultMessageQueryLimit is the default page size for message queries
	DefaultMessageQueryLimit = 50
)

// Proximity constants
const (
	// DefaultRadiusMiles is the subscription radius when a client does not
	// announce one
	DefaultRadiusMiles = 2.0
)

// Presence constants
const (
	// PresenceTTL is how long a presence entry survives without a refresh
	PresenceTTL = 5 * time.Minute
)

// WebSocket buffer constants
const (
	// ClientSendBufferSize is the per-connection outbound queue length
	ClientSendBufferSize = 256
)
