package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(t *testing.T) (*eventService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewEventService(store.Events(), store.Registrations(), NewAuthGate(), 5*time.Second).(*eventService)
	svc.now = fixedClock
	return svc, store
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		wantErr error
	}{
		{
			name:  "valid event",
			event: domain.NewEvent("  Go Meetup ", "talks", "Hall A", "org-1", testNow.Add(time.Hour), intPtr(10), time.Time{}, time.Time{}),
		},
		{
			name:  "unlimited capacity",
			event: domain.NewEvent("Open Day", "", "", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
		},
		{
			name:  "multibyte title within limit",
			event: domain.NewEvent(strings.Repeat("Ж", 150), "", "", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
		},
		{
			name:  "title at limit",
			event: domain.NewEvent(strings.Repeat("Ж", 200), "", "", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
		},
		{
			name:    "title too long",
			event:   domain.NewEvent(strings.Repeat("Ж", 201), "", "", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:  "multibyte location within limit",
			event: domain.NewEvent("Meetup", "", strings.Repeat("é", 200), "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
		},
		{
			name:    "location too long",
			event:   domain.NewEvent("Meetup", "", strings.Repeat("é", 201), "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing title",
			event:   domain.NewEvent("   ", "", "", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "zero capacity",
			event:   domain.NewEvent("Tiny", "", "", "org-1", testNow.Add(time.Hour), intPtr(0), time.Time{}, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "start in the past",
			event:   domain.NewEvent("Yesterday", "", "", "org-1", testNow.Add(-time.Hour), nil, time.Time{}, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "no organizer",
			event:   domain.NewEvent("Orphan", "", "", "", testNow.Add(time.Hour), nil, time.Time{}, time.Time{}),
			wantErr: domain.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestEventService(t)
			err := svc.CreateEvent(ctx, tt.event)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, tt.event.ID)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.event.ID)
			assert.Equal(t, testNow, tt.event.CreatedAt)
			assert.NotContains(t, tt.event.Title, " Go")
		})
	}
}

func TestEventService_GetEvent_View(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestEventService(t)
	e := domain.NewEvent("Go Meetup", "", "", "org-1", testNow.Add(time.Hour), intPtr(1), time.Time{}, time.Time{})
	require.NoError(t, svc.CreateEvent(ctx, e))
	require.NoError(t, store.Registrations().Admit(ctx, domain.NewEventRegistration(e.ID, "user-1", testNow), testNow))

	v, err := svc.GetEvent(ctx, e.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.RegisteredCount)
	assert.True(t, v.IsFull)
	assert.False(t, v.IsPast)
	assert.True(t, v.IsRegistered)

	v, err = svc.GetEvent(ctx, e.ID, "")
	require.NoError(t, err)
	assert.False(t, v.IsRegistered)

	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	v, err = svc.GetEvent(ctx, e.ID, "user-2")
	require.NoError(t, err)
	assert.True(t, v.IsPast)
	assert.False(t, v.IsRegistered)

	_, err = svc.GetEvent(ctx, "missing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestEventService(t)
	for _, title := range []string{"Alpha", "Beta"} {
		require.NoError(t, svc.CreateEvent(ctx, domain.NewEvent(title, "", "Hall", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{})))
	}

	views, total, err := svc.ListEvents(ctx, domain.EventFilter{Ordering: "title"}, domain.PaginationParams{Page: 1, PageSize: 1}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, views, 1)
	assert.Equal(t, "Alpha", views[0].Title)
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*eventService, *domain.Event) {
		svc, store := newTestEventService(t)
		e := domain.NewEvent("Go Meetup", "", "", "org-1", testNow.Add(time.Hour), intPtr(5), time.Time{}, time.Time{})
		require.NoError(t, svc.CreateEvent(ctx, e))
		for _, u := range []string{"user-1", "user-2"} {
			require.NoError(t, store.Registrations().Admit(ctx, domain.NewEventRegistration(e.ID, u, testNow), testNow))
		}
		return svc, e
	}
	past := testNow.Add(-time.Hour)
	future := testNow.Add(48 * time.Hour)

	tests := []struct {
		name     string
		callerID string
		upd      domain.EventUpdate
		wantErr  error
		check    func(t *testing.T, e *domain.Event)
	}{
		{
			name:     "organizer edits title and capacity",
			callerID: "org-1",
			upd:      domain.EventUpdate{Title: strPtr("Renamed"), Capacity: intPtr(2)},
			check: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, "Renamed", e.Title)
				assert.Equal(t, 2, *e.Capacity)
				assert.True(t, e.IsFull())
			},
		},
		{
			name:     "organizer moves the start",
			callerID: "org-1",
			upd:      domain.EventUpdate{StartTime: &future},
			check: func(t *testing.T, e *domain.Event) {
				assert.True(t, e.StartTime.Equal(future))
			},
		},
		{
			name:     "clear capacity",
			callerID: "org-1",
			upd:      domain.EventUpdate{ClearCapacity: true, Capacity: intPtr(0)},
			check: func(t *testing.T, e *domain.Event) {
				assert.Nil(t, e.Capacity)
			},
		},
		{
			name:     "capacity below registrations",
			callerID: "org-1",
			upd:      domain.EventUpdate{Capacity: intPtr(1)},
			wantErr:  domain.ErrCapacityBelowRegistered,
		},
		{
			name:     "non organizer",
			callerID: "user-1",
			upd:      domain.EventUpdate{Title: strPtr("Hijacked")},
			wantErr:  domain.ErrForbidden,
		},
		{
			name:     "blank title",
			callerID: "org-1",
			upd:      domain.EventUpdate{Title: strPtr(" ")},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "start in the past",
			callerID: "org-1",
			upd:      domain.EventUpdate{StartTime: &past},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "multibyte title",
			callerID: "org-1",
			upd:      domain.EventUpdate{Title: strPtr(strings.Repeat("Ж", 150))},
			check: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, strings.Repeat("Ж", 150), e.Title)
			},
		},
		{
			name:     "location too long",
			callerID: "org-1",
			upd:      domain.EventUpdate{Location: strPtr(strings.Repeat("x", 201))},
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, e := setup(t)
			updated, err := svc.UpdateEvent(ctx, e.ID, tt.callerID, tt.upd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, updated)
		})
	}

	t.Run("unknown event", func(t *testing.T) {
		svc, _ := newTestEventService(t)
		_, err := svc.UpdateEvent(ctx, "missing", "org-1", domain.EventUpdate{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestEventService(t)
	e := domain.NewEvent("Go Meetup", "", "", "org-1", testNow.Add(time.Hour), nil, time.Time{}, time.Time{})
	require.NoError(t, svc.CreateEvent(ctx, e))
	require.NoError(t, store.Registrations().Admit(ctx, domain.NewEventRegistration(e.ID, "user-1", testNow), testNow))

	assert.ErrorIs(t, svc.DeleteEvent(ctx, e.ID, "user-1"), domain.ErrForbidden)
	require.NoError(t, svc.DeleteEvent(ctx, e.ID, "org-1"))
	assert.ErrorIs(t, svc.DeleteEvent(ctx, e.ID, "org-1"), domain.ErrNotFound)

	mine, err := store.Registrations().ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

type failingEventRepo struct {
	domain.EventRepository
}

func (failingEventRepo) GetByID(context.Context, string) (*domain.Event, error) {
	return nil, errors.New("db down")
}

func TestEventService_InfrastructureErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestEventService(t)
	svc.eventRepo = failingEventRepo{}

	_, err := svc.GetEvent(ctx, "ev-1", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestAuthGate(t *testing.T) {
	gate := NewAuthGate()
	e := &domain.Event{OrganizerID: "org-1"}
	assert.True(t, gate.IsOrganizerOf("org-1", e))
	assert.False(t, gate.IsOrganizerOf("user-1", e))
	assert.False(t, gate.IsOrganizerOf("", &domain.Event{}))
	assert.False(t, gate.IsOrganizerOf("org-1", nil))
}

func strPtr(v string) *string { return &v }
