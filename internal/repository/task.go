package repository

import (
	"context"

	"github.com/ccarlsson/todo-app/internal/domain"
)

type TaskRepository interface {
	// Create persists the task and returns its ID.
	Create(ctx context.Context, task *domain.Task) (string, error)
	// GetByUser returns every task owned by userID in no guaranteed order;
	// ordering is a handler concern.
	GetByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	// GetByID is owner-scoped: a task stored under a different owner is
	// reported as domain.ErrTaskNotFound, exactly like a task that does not
	// exist. This single signal is the ownership-authorization mechanism.
	GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error)
	// Exists is the unscoped check the transport boundary uses to decide
	// between "not found" and "forbidden" after an owner-scoped miss.
	Exists(ctx context.Context, taskID string) (bool, error)
	Update(ctx context.Context, task *domain.Task) error
	// Delete is a no-op, not an error, when the (taskID, userID) pair does
	// not match an existing task.
	Delete(ctx context.Context, taskID, userID string) error
}
