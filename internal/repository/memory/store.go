// Package memory is an in-process implementation of the repository ports. It backs
// STORAGE=memory and the concurrency tests.
package memory

import (
	"sync"

	"eventhub/internal/domain"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 64

type storedRegistration struct {
	reg *domain.EventRegistration
	seq uint64
}

// Store holds events, registrations and users.
//
// mu guards the maps and is only held for short reads and writes. Every operation that
// checks registration state and then changes it (admit, unregister, capacity update,
// event delete) additionally holds the event's stripe lock, so those sequences are
// atomic per event while different events proceed in parallel.
type Store struct {
	stripes [lockStripes]sync.Mutex

	mu            sync.RWMutex
	events        map[string]*domain.Event
	registrations map[string]map[string]storedRegistration // eventID -> userID
	users         map[string]*domain.User
	usersByEmail  map[string]string
	seq           uint64
}

func NewStore() *Store {
	return &Store{
		events:        make(map[string]*domain.Event),
		registrations: make(map[string]map[string]storedRegistration),
		users:         make(map[string]*domain.User),
		usersByEmail:  make(map[string]string),
	}
}

// Events returns the event repository view of the store.
func (s *Store) Events() domain.EventRepository {
	return &eventRepository{store: s}
}

// Registrations returns the registration repository view of the store.
func (s *Store) Registrations() domain.EventRegistrationRepository {
	return &eventRegistrationRepository{store: s}
}

// Users returns the user repository view of the store.
func (s *Store) Users() domain.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) lockEvent(eventID string) func() {
	m := &s.stripes[xxhash.Sum64String(eventID)%lockStripes]
	m.Lock()
	return m.Unlock
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// eventCopy returns a detached copy of e with RegisteredCount filled in. Caller holds mu.
func (s *Store) eventCopy(e *domain.Event) *domain.Event {
	c := *e
	if e.Capacity != nil {
		v := *e.Capacity
		c.Capacity = &v
	}
	c.RegisteredCount = len(s.registrations[e.ID])
	return &c
}

func copyRegistration(r *domain.EventRegistration) *domain.EventRegistration {
	c := *r
	return &c
}
