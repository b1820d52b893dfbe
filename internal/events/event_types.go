package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/academy-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubjectRegistered EventType = "subject_registered"
	EventLoginSucceeded    EventType = "login_succeeded"
	EventLoginFailed       EventType = "login_failed"
	EventLoggedOut         EventType = "logged_out"
	EventSecretChanged     EventType = "secret_changed"
	EventReauthForced      EventType = "reauth_forced"
)

// Event represents an auth lifecycle event. It never carries secrets or raw tokens.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	TokenID     string        `json:"token_id"`
	Roles       []domain.Role `json:"roles"`
	LandingPath string        `json:"landing_path"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// LoginFailedPayload payload. Reason is internal only.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// LoggedOutPayload payload.
type LoggedOutPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReauthForcedPayload payload.
type ReauthForcedPayload struct {
	Cutoff time.Time `json:"cutoff"`
	Until  time.Time `json:"until"`
}
