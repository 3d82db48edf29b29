// Package memory implements the repositories on mutex-guarded maps. The
// store is owned by whoever constructs it and injected into usecases; there
// is no package-level state. Every operation is atomic per call.
package memory

import (
	"context"
	"sync"

	"github.com/ccarlsson/todo-app/internal/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // normalized email -> user ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email.String()]; exists {
		return "", domain.ErrEmailTaken
	}

	r.byID[user.ID] = *user
	r.byEmail[user.Email.String()] = user.ID
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email.String()]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
