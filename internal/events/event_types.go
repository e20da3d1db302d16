package events

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted       EventType = "session_started"
	EventSessionRefreshed     EventType = "session_refreshed"
	EventSessionCleared       EventType = "session_cleared"
	EventNotificationReceived EventType = "notification_received"
)

// Event represents a client-side event emitted by the session store and
// background workers.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// SessionRefreshedPayload payload.
type SessionRefreshedPayload struct {
	RotatedRefreshToken bool `json:"rotated_refresh_token"`
}

// SessionClearedPayload payload.
type SessionClearedPayload struct {
	Reason string `json:"reason"`
}

// NotificationReceivedPayload payload.
type NotificationReceivedPayload struct {
	Notification domain.Notification `json:"notification"`
}
