package domain

import (
	"time"
)

// MessageTTL is the retention window after which a message expires.
const MessageTTL = 24 * time.Hour

// Message represents a location-scoped broadcast message. Messages are
// immutable once created; eviction after ExpiresAt is the only deletion
// path.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Radius    float64   `json:"radius"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MessageCreate represents data needed to create a message
type MessageCreate struct {
	UserID   string
	Username string
	Content  string
	Origin   Position
	Radius   float64
}

// Origin returns the message's origin position.
func (m *Message) Origin() Position {
	return Position{Latitude: m.Latitude, Longitude: m.Longitude}
}

// Expired reports whether the message is past its retention window at
// the given instant.
func (m *Message) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}
