package domain

import (
	"context"
	"time"
)

// Event is something an organizer publishes and attendees register for.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	OrganizerID string    `json:"organizer_id"`
	// Capacity is nil for events without an attendee limit.
	Capacity *int `json:"capacity"`
	// RegisteredCount is computed from the live registrations whenever the event is read.
	RegisteredCount int       `json:"registered_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description, location, organizerID string, startTime time.Time, capacity *int, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		OrganizerID: organizerID,
		StartTime:   startTime,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsFull reports whether no seat is left. Events without capacity are never full.
func (e *Event) IsFull() bool {
	if e.Capacity == nil {
		return false
	}
	return e.RegisteredCount >= *e.Capacity
}

// HasStarted reports whether registration is closed at now.
func (e *Event) HasStarted(now time.Time) bool {
	return !e.StartTime.After(now)
}

// EventView is the caller-specific representation of an event.
// swagger:model EventView
type EventView struct {
	*Event
	IsFull       bool `json:"is_full"`
	IsPast       bool `json:"is_past"`
	IsRegistered bool `json:"is_registered"`
}

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	Location    string
	OrganizerID string
	UpcomingAt  *time.Time
	Search      string
	// Ordering is one of EventOrderings; empty means "-date".
	Ordering string
}

// EventOrderings lists the accepted values of EventFilter.Ordering.
var EventOrderings = []string{"date", "-date", "created_at", "-created_at", "title", "-title"}

// EventUpdate carries a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	Capacity    *int
	// ClearCapacity removes the attendee limit. It wins over Capacity.
	ClearCapacity bool
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns one page of events matching the filter and the total match count.
	List(ctx context.Context, filter EventFilter, page PaginationParams) ([]*Event, int, error)
	// Update applies upd under the same per-event lock used by admission, so a capacity
	// change cannot interleave with a registration. Returns ErrCapacityBelowRegistered
	// when the new capacity is lower than the live registration count.
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	// Delete removes the event and, by cascade, its registrations.
	Delete(ctx context.Context, id string) error
}

// AuthGate answers capability questions about an already authenticated identity.
type AuthGate interface {
	IsOrganizerOf(userID string, event *Event) bool
}

// EventService defines event management operations (organizer side and public reads).
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, viewerID string) (*EventView, error)
	ListEvents(ctx context.Context, filter EventFilter, page PaginationParams, viewerID string) ([]*EventView, int, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
}
