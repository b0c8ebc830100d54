package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/metrics"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	gate             domain.AuthGate
	dispatcher       *NotificationDispatcher
	metrics          *metrics.Metrics
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewRegistrationService creates the RegistrationService. timeout bounds every call,
// including admissions that keep running after the caller has gone away.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	gate domain.AuthGate,
	dispatcher *NotificationDispatcher,
	m *metrics.Metrics,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		gate:             gate,
		dispatcher:       dispatcher,
		metrics:          m,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

// Register admits userID into the event. The checks run in a fixed order and the
// first failing one decides the error: ErrNotFound, ErrClosed, ErrAlreadyRegistered,
// ErrFull. The confirmation is dispatched only after the admission committed.
func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// A client that disconnects mid-admission must not leave a half-finished
	// transaction: the admission always runs to commit or abort.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(actx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.IncrementRejected(metrics.ReasonNotFound)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := s.now().UTC()
	if event.HasStarted(now) {
		s.metrics.IncrementRejected(metrics.ReasonClosed)
		return nil, domain.ErrClosed
	}

	reg := domain.NewEventRegistration(eventID, userID, now)
	start := time.Now()
	err = s.registrationRepo.Admit(actx, reg, now)
	s.metrics.ObserveAdmission(start)
	if err != nil {
		if reason, ok := rejectionReason(err); ok {
			s.metrics.IncrementRejected(reason)
			return nil, err
		}
		return nil, fmt.Errorf("admit registration: %w", err)
	}
	s.metrics.IncrementAdmitted()

	s.dispatcher.Dispatch(ctx, event, reg)
	return reg, nil
}

func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ReasonNotFound, true
	case errors.Is(err, domain.ErrClosed):
		return metrics.ReasonClosed, true
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return metrics.ReasonAlreadyRegistered, true
	case errors.Is(err, domain.ErrFull):
		return metrics.ReasonFull, true
	}
	return "", false
}

// Unregister releases the caller's seat. Unregistering after the event started is allowed.
func (s *registrationService) Unregister(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := s.registrationRepo.Delete(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			return domain.ErrNotRegistered
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	s.metrics.IncrementUnregistered()
	return nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, eventID, userID string) ([]*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !s.gate.IsOrganizerOf(userID, event) {
		return nil, domain.ErrForbidden
	}
	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	// One lookup per distinct event (N+1); a user holds few registrations.
	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.EventRegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// deleted between the two reads
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.EventRegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, nil
}
