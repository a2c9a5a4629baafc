package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp    EventType = "user_signed_up"
	EventPasswordChanged EventType = "password_changed"
	EventUserDeactivated EventType = "user_deactivated"
	EventBookingCreated  EventType = "booking_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, subjectID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	AccountURL string `json:"account_url"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Via string `json:"via"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	BookingID string  `json:"booking_id"`
	TourID    string  `json:"tour_id"`
	Price     float64 `json:"price"`
}
