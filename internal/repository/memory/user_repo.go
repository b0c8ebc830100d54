package memory

import (
	"context"
	"strings"

	"eventhub/internal/domain"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := s.usersByEmail[key]; taken {
		return domain.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	stored := *u
	s.users[u.ID] = &stored
	s.usersByEmail[key] = u.ID
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *stored
	return &u, nil
}
