package domain

import (
	"time"
)

// Report is an append-only moderation record. MessageID and UserID are
// optional references; nothing is enforced against the stores.
type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporterId,omitempty"`
	MessageID  string    `json:"messageId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"` // pending until reviewed
	CreatedAt  time.Time `json:"createdAt"`
}

// ReportCreate represents data needed to file a report
type ReportCreate struct {
	ReporterID string `json:"reporterId,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Reason     string `json:"reason" binding:"required"`
}
