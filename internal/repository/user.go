package repository

import (
	"context"

	"github.com/ccarlsson/todo-app/internal/domain"
)

// Usecases depend on interfaces, not concrete implementations, so the
// backend can be swapped at startup and tests can inject fakes.
type UserRepository interface {
	// Create persists the user and returns its ID.
	Create(ctx context.Context, user *domain.User) (string, error)
	// GetByEmail matches on the normalized address (exact equality, never
	// substring). Returns domain.ErrUserNotFound when absent.
	GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
	// GetByID returns domain.ErrUserNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
