package domain

import (
	"time"
)

// User represents a user identity with its last-known position.
// Users are soft-deleted only: liveness is tracked via IsActive/LastSeen.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Radius    float64   `json:"radius"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// UserCreate represents data needed to create a new user
type UserCreate struct {
	Username  string   `json:"username" binding:"required,min=1,max=30"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Radius    float64  `json:"radius"`
}

// UserSummary is the minimal user representation returned by the
// nearby-users endpoint.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Summary converts a User to its public summary form.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// Pos returns the user's last-known position, or false when it was
// never reported.
func (u *User) Pos() (Position, bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return Position{}, false
	}
	return Position{Latitude: *u.Latitude, Longitude: *u.Longitude}, true
}
