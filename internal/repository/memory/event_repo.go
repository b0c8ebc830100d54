package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"eventhub/internal/domain"

	"github.com/google/uuid"
)

type eventRepository struct {
	store *Store
}

func (r *eventRepository) Create(_ context.Context, e *domain.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	e.RegisteredCount = 0
	stored := *e
	if e.Capacity != nil {
		v := *e.Capacity
		stored.Capacity = &v
	}
	s.events[e.ID] = &stored
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id string) (*domain.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.eventCopy(e), nil
}

func matchesFilter(e *domain.Event, f domain.EventFilter) bool {
	if f.DateFrom != nil && e.StartTime.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.StartTime.After(*f.DateTo) {
		return false
	}
	if f.Location != "" && !containsFold(e.Location, f.Location) {
		return false
	}
	if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
		return false
	}
	if f.UpcomingAt != nil && e.StartTime.Before(*f.UpcomingAt) {
		return false
	}
	if f.Search != "" &&
		!containsFold(e.Title, f.Search) && !containsFold(e.Description, f.Search) && !containsFold(e.Location, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func eventComparator(ordering string) func(a, b *domain.Event) int {
	byTime := func(get func(*domain.Event) time.Time) func(a, b *domain.Event) int {
		return func(a, b *domain.Event) int {
			if c := get(a).Compare(get(b)); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		}
	}
	desc := func(f func(a, b *domain.Event) int) func(a, b *domain.Event) int {
		return func(a, b *domain.Event) int { return f(b, a) }
	}
	start := byTime(func(e *domain.Event) time.Time { return e.StartTime })
	created := byTime(func(e *domain.Event) time.Time { return e.CreatedAt })
	title := func(a, b *domain.Event) int {
		if c := cmp.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}

	switch ordering {
	case "date":
		return start
	case "created_at":
		return created
	case "-created_at":
		return desc(created)
	case "title":
		return title
	case "-title":
		return desc(title)
	default:
		return desc(start)
	}
}

func (r *eventRepository) List(_ context.Context, f domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	s := r.store
	s.mu.RLock()
	matched := make([]*domain.Event, 0, len(s.events))
	for _, e := range s.events {
		if matchesFilter(e, f) {
			matched = append(matched, s.eventCopy(e))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, eventComparator(f.Ordering))
	start, end := page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (r *eventRepository) Update(_ context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	s := r.store
	unlock := s.lockEvent(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Capacity != nil && !upd.ClearCapacity && *upd.Capacity < len(s.registrations[id]) {
		return nil, domain.ErrCapacityBelowRegistered
	}

	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.ClearCapacity {
		e.Capacity = nil
	} else if upd.Capacity != nil {
		v := *upd.Capacity
		e.Capacity = &v
	}
	e.UpdatedAt = time.Now().UTC()
	return s.eventCopy(e), nil
}

func (r *eventRepository) Delete(_ context.Context, id string) error {
	s := r.store
	unlock := s.lockEvent(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	delete(s.registrations, id)
	return nil
}
