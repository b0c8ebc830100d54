package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"eventhub/internal/domain"
)

const (
	maxTitleLength    = 200
	maxLocationLength = 200
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	gate             domain.AuthGate
	contextTimeout   time.Duration
	now              func() time.Time
}

func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	gate domain.AuthGate,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		gate:             gate,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalid("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateLocation(location string) error {
	if utf8.RuneCountInString(location) > maxLocationLength {
		return invalid("location must be at most %d characters", maxLocationLength)
	}
	return nil
}

func validateCapacity(capacity *int) error {
	if capacity != nil && *capacity < 1 {
		return invalid("capacity must be at least 1")
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OrganizerID == "" {
		return domain.ErrUnauthenticated
	}
	event.Title = strings.TrimSpace(event.Title)
	if err := validateTitle(event.Title); err != nil {
		return err
	}
	event.Location = strings.TrimSpace(event.Location)
	if err := validateLocation(event.Location); err != nil {
		return err
	}
	if err := validateCapacity(event.Capacity); err != nil {
		return err
	}
	now := s.now().UTC()
	if !event.StartTime.After(now) {
		return invalid("start_time must be in the future")
	}

	event.StartTime = event.StartTime.UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.RegisteredCount = 0
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, viewerID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.view(ctx, event, viewerID, s.now())
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams, viewerID string) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	now := s.now()
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		v, err := s.view(ctx, e, viewerID, now)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, total, nil
}

func (s *eventService) view(ctx context.Context, event *domain.Event, viewerID string, now time.Time) (*domain.EventView, error) {
	v := &domain.EventView{
		Event:  event,
		IsFull: event.IsFull(),
		IsPast: event.HasStarted(now),
	}
	if viewerID == "" {
		return v, nil
	}
	_, err := s.registrationRepo.GetByEventAndUser(ctx, event.ID, viewerID)
	switch {
	case err == nil:
		v.IsRegistered = true
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return v, nil
}

// UpdateEvent applies a partial update. Only the organizer may edit; a capacity
// below the live registration count is refused by the repository under the event lock.
func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !s.gate.IsOrganizerOf(callerID, event) {
		return nil, domain.ErrForbidden
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		upd.Title = &title
	}
	if upd.Location != nil {
		location := strings.TrimSpace(*upd.Location)
		if err := validateLocation(location); err != nil {
			return nil, err
		}
		upd.Location = &location
	}
	if !upd.ClearCapacity {
		if err := validateCapacity(upd.Capacity); err != nil {
			return nil, err
		}
	}
	if upd.StartTime != nil {
		if !upd.StartTime.After(s.now()) {
			return nil, invalid("start_time must be in the future")
		}
		st := upd.StartTime.UTC()
		upd.StartTime = &st
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCapacityBelowRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !s.gate.IsOrganizerOf(callerID, event) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
