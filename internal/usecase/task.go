package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/repository"
	"github.com/ccarlsson/todo-app/internal/validation"
)

type TaskUsecase struct {
	tasks    repository.TaskRepository
	pipeline *validation.Pipeline
}

func NewTaskUsecase(tasks repository.TaskRepository, pipeline *validation.Pipeline) *TaskUsecase {
	return &TaskUsecase{tasks: tasks, pipeline: pipeline}
}

type CreateTaskInput struct {
	UserID      string           `validate:"required"`
	Title       string           `validate:"required,max=200"`
	Description *string          `validate:"omitempty,max=1000"`
	DueDate     *time.Time
	Priority    *domain.Priority
}

type UpdateTaskInput struct {
	UserID      string           `validate:"required"`
	TaskID      string           `validate:"required"`
	Title       *string          `validate:"omitempty,max=200"`
	Description *string          `validate:"omitempty,max=1000"`
	DueDate     *time.Time
	Priority    *domain.Priority
	Status      *domain.Status
}

type DeleteTaskInput struct {
	UserID string `validate:"required"`
	TaskID string `validate:"required"`
}

type ListTasksInput struct {
	UserID   string
	Status   *domain.Status
	Priority *domain.Priority
	// DueFilter buckets by due date: "overdue" (due before now) or
	// "upcoming" (due now or later); anything else means no filtering.
	DueFilter string
	// SortBy is "duedate" (ascending, undated tasks last) or "createdat"
	// (ascending); unrecognized or empty values sort by creation time.
	SortBy string
}

func (u *TaskUsecase) Create(ctx context.Context, input CreateTaskInput) (string, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := u.pipeline.Check(input); err != nil {
		return "", err
	}

	task := domain.NewTask(input.UserID, input.Title, input.Description, input.DueDate, input.Priority)
	id, err := u.tasks.Create(ctx, task)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

// Get returns the task only when it is owned by userID; a task owned by
// someone else is domain.ErrTaskNotFound, same as one that does not exist.
func (u *TaskUsecase) Get(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	return u.tasks.GetByID(ctx, taskID, userID)
}

// Exists checks task existence regardless of owner. The transport layer
// calls it after an owner-scoped miss to answer 404 vs 403.
func (u *TaskUsecase) Exists(ctx context.Context, taskID string) (bool, error) {
	return u.tasks.Exists(ctx, taskID)
}

func (u *TaskUsecase) List(ctx context.Context, input ListTasksInput) ([]*domain.Task, error) {
	list, err := u.tasks.GetByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	list = filterTasks(list, input)
	sortTasks(list, input.SortBy)
	return list, nil
}

func (u *TaskUsecase) Update(ctx context.Context, input UpdateTaskInput) error {
	if err := u.pipeline.Check(input); err != nil {
		return err
	}

	task, err := u.tasks.GetByID(ctx, input.TaskID, input.UserID)
	if err != nil {
		return err
	}

	task.Update(input.Title, input.Description, input.DueDate, input.Priority, input.Status)

	if err := u.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (u *TaskUsecase) Delete(ctx context.Context, input DeleteTaskInput) error {
	if err := u.pipeline.Check(input); err != nil {
		return err
	}

	if _, err := u.tasks.GetByID(ctx, input.TaskID, input.UserID); err != nil {
		return err
	}

	if err := u.tasks.Delete(ctx, input.TaskID, input.UserID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func filterTasks(list []*domain.Task, input ListTasksInput) []*domain.Task {
	out := list[:0]
	now := time.Now().UTC()
	dueFilter := strings.ToLower(input.DueFilter)

	for _, t := range list {
		if input.Status != nil && t.Status != *input.Status {
			continue
		}
		if input.Priority != nil && (t.Priority == nil || *t.Priority != *input.Priority) {
			continue
		}
		switch dueFilter {
		case "overdue":
			if t.DueDate == nil || !t.DueDate.Before(now) {
				continue
			}
		case "upcoming":
			if t.DueDate == nil || t.DueDate.Before(now) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func sortTasks(list []*domain.Task, sortBy string) {
	switch strings.ToLower(sortBy) {
	case "duedate":
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].DueDate, list[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
	default:
		// "createdat" and anything unrecognized sort by creation time.
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	}
}
