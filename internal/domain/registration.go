package domain

import (
	"context"
	"time"
)

// EventRegistration represents an attendee's registration for an event.
// swagger:model EventRegistration
type EventRegistration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEventRegistration creates a new EventRegistration. ID is typically set by the repository on create.
func NewEventRegistration(eventID, userID string, createdAt time.Time) *EventRegistration {
	return &EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// EventRegistrationRepository defines storage operations for event registrations.
type EventRegistrationRepository interface {
	// Admit atomically checks the event and inserts reg. Concurrent calls for the same
	// event are serialized; calls for different events are not. It returns ErrNotFound,
	// ErrClosed (event start not after now), ErrAlreadyRegistered or ErrFull and leaves
	// no partial state behind on any error.
	Admit(ctx context.Context, reg *EventRegistration, now time.Time) error
	// Delete removes the user's registration or returns ErrNotRegistered.
	Delete(ctx context.Context, eventID, userID string) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	// ListByEventID returns live registrations, newest first.
	ListByEventID(ctx context.Context, eventID string) ([]*EventRegistration, error)
	// ListByUserID returns the user's registrations, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*EventRegistration, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// EventRegistrationWithEvent bundles a registration with its related event.
type EventRegistrationWithEvent struct {
	Registration *EventRegistration `json:"registration"`
	Event        *Event             `json:"event"`
}

// RegistrationNotifier delivers the registration confirmation. It is best-effort:
// callers log its error and never let it change the registration outcome.
type RegistrationNotifier interface {
	NotifyRegistered(ctx context.Context, event *Event, reg *EventRegistration) error
}

// RegistrationService defines attendee-facing registration operations.
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	Unregister(ctx context.Context, eventID, userID string) error
	// ListRegistrations returns the event's attendee list, newest first. Organizer only.
	ListRegistrations(ctx context.Context, eventID, userID string) ([]*EventRegistration, error)
	ListMyRegistrations(ctx context.Context, userID string) ([]*EventRegistrationWithEvent, error)
}
