package memory

import (
	"context"
	"sync"

	"github.com/ccarlsson/todo-app/internal/domain"
)

// TaskRepository stores deep copies on both write and read so a task handed
// back to a caller never aliases stored state.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task.Clone()
	return task.ID, nil
}

func (r *TaskRepository) GetByUser(_ context.Context, userID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *TaskRepository) GetByID(_ context.Context, taskID, userID string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (r *TaskRepository) Exists(_ context.Context, taskID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tasks[taskID]
	return ok, nil
}

// Update overwrites the stored task wholesale; concurrent updates to the
// same key are serialized by the lock and resolve last-write-wins.
func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, taskID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[taskID]; ok && t.UserID == userID {
		delete(r.tasks, taskID)
	}
	return nil
}
