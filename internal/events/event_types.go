package events

import (
	"time"

	"github.com/moona-liza/natours/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp           EventType = "user_signed_up"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
)

// Event represents an account event emitted by services. Payloads never carry
// credential hashes or raw reset tokens.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	ProfileURL string      `json:"profile_url"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Email string `json:"email"`
	// Reset distinguishes a reset completion from an authenticated change.
	Reset bool `json:"reset"`
}
