package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"eventhub/internal/domain"

	"github.com/google/uuid"
)

type eventRegistrationRepository struct {
	store *Store
}

// Admit holds the event's stripe lock across the check and the insert. The map lock is
// taken twice, shared for the checks and exclusive for the write, so admissions for
// unrelated events only contend on the short write.
func (r *eventRegistrationRepository) Admit(_ context.Context, reg *domain.EventRegistration, now time.Time) error {
	s := r.store
	unlock := s.lockEvent(reg.EventID)
	defer unlock()

	s.mu.RLock()
	e, ok := s.events[reg.EventID]
	if !ok {
		s.mu.RUnlock()
		return domain.ErrNotFound
	}
	closed := e.HasStarted(now)
	_, exists := s.registrations[reg.EventID][reg.UserID]
	full := e.Capacity != nil && len(s.registrations[reg.EventID]) >= *e.Capacity
	s.mu.RUnlock()

	switch {
	case closed:
		return domain.ErrClosed
	case exists:
		return domain.ErrAlreadyRegistered
	case full:
		return domain.ErrFull
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.registrations[reg.EventID]
	if !ok {
		regs = make(map[string]storedRegistration)
		s.registrations[reg.EventID] = regs
	}
	reg.ID = uuid.NewString()
	regs[reg.UserID] = storedRegistration{reg: copyRegistration(reg), seq: s.nextSeq()}
	return nil
}

func (r *eventRegistrationRepository) Delete(_ context.Context, eventID, userID string) error {
	s := r.store
	unlock := s.lockEvent(eventID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.registrations[eventID]
	if _, ok := regs[userID]; !ok {
		return domain.ErrNotRegistered
	}
	delete(regs, userID)
	if len(regs) == 0 {
		delete(s.registrations, eventID)
	}
	return nil
}

func (r *eventRegistrationRepository) GetByEventAndUser(_ context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, ok := s.registrations[eventID][userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRegistration(sr.reg), nil
}

func (r *eventRegistrationRepository) ListByEventID(_ context.Context, eventID string) ([]*domain.EventRegistration, error) {
	s := r.store
	s.mu.RLock()
	found := make([]storedRegistration, 0, len(s.registrations[eventID]))
	for _, sr := range s.registrations[eventID] {
		found = append(found, sr)
	}
	s.mu.RUnlock()
	return newestFirst(found), nil
}

func (r *eventRegistrationRepository) ListByUserID(_ context.Context, userID string) ([]*domain.EventRegistration, error) {
	s := r.store
	s.mu.RLock()
	var found []storedRegistration
	for _, regs := range s.registrations {
		if sr, ok := regs[userID]; ok {
			found = append(found, sr)
		}
	}
	s.mu.RUnlock()
	return newestFirst(found), nil
}

func (r *eventRegistrationRepository) CountByEventID(_ context.Context, eventID string) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registrations[eventID]), nil
}

// newestFirst orders by creation time descending; insertion order breaks ties.
func newestFirst(found []storedRegistration) []*domain.EventRegistration {
	slices.SortFunc(found, func(a, b storedRegistration) int {
		if c := b.reg.CreatedAt.Compare(a.reg.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	out := make([]*domain.EventRegistration, 0, len(found))
	for _, sr := range found {
		out = append(out, copyRegistration(sr.reg))
	}
	return out
}
