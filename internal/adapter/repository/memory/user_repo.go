package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dhee091/Housing-Management-sub000/internal/identity"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]identity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[string]identity.User), byEmail: make(map[string]string)}
}

func (r *UserRepository) Create(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("%w: email %s", domain.ErrConflict, user.Email)
	}
	if _, ok := r.byID[user.ID]; ok {
		return fmt.Errorf("%w: user %s", domain.ErrConflict, user.ID)
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user with email: %w", domain.ErrNotFound)
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}
