// Package storagetest holds the repository contract suite. Both backends
// must pass it unmodified; a behavioral difference between them is a bug in
// the backend, never in the caller.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/repository"
)

// Factory builds a fresh, empty pair of repositories for one test.
type Factory func(t *testing.T) (repository.UserRepository, repository.TaskRepository)

// Run executes the full contract suite against the backend the factory
// produces.
func Run(t *testing.T, factory Factory) {
	t.Run("UserCreateAndGetByID", func(t *testing.T) { testUserCreateAndGetByID(t, factory) })
	t.Run("UserGetByEmailNormalizedEquality", func(t *testing.T) { testUserGetByEmail(t, factory) })
	t.Run("UserAbsentIsNotFound", func(t *testing.T) { testUserAbsent(t, factory) })
	t.Run("TaskRoundTripFidelity", func(t *testing.T) { testTaskRoundTrip(t, factory) })
	t.Run("TaskOwnershipIsolation", func(t *testing.T) { testTaskOwnership(t, factory) })
	t.Run("TaskGetByUserReturnsOnlyOwned", func(t *testing.T) { testTaskGetByUser(t, factory) })
	t.Run("TaskUpdatePersists", func(t *testing.T) { testTaskUpdate(t, factory) })
	t.Run("TaskDeleteScopedToOwner", func(t *testing.T) { testTaskDelete(t, factory) })
	t.Run("TaskDeleteMissingIsNoop", func(t *testing.T) { testTaskDeleteMissing(t, factory) })
	t.Run("TaskExistsIgnoresOwner", func(t *testing.T) { testTaskExists(t, factory) })
}

// RunConcurrency exercises parallel writers against disjoint and shared
// keys. Separate from Run so backends with external round-trip latency can
// opt out.
func RunConcurrency(t *testing.T, factory Factory) {
	t.Run("ConcurrentCreatesAndReads", func(t *testing.T) { testConcurrentCreates(t, factory) })
	t.Run("ConcurrentUpdatesSameKeyLastWriteWins", func(t *testing.T) { testConcurrentUpdates(t, factory) })
}

func mustEmail(t *testing.T, raw string) domain.Email {
	t.Helper()
	email, err := domain.NewEmail(raw)
	if err != nil {
		t.Fatalf("NewEmail(%q): %v", raw, err)
	}
	return email
}

// newTask builds a fully populated task. Timestamps are truncated to
// milliseconds so fidelity checks hold across stores with millisecond
// datetime resolution.
func newTask(t *testing.T, userID string) *domain.Task {
	t.Helper()
	task := domain.NewTask(userID, "Buy milk", descPtr("2 liters"), nil, priPtr(domain.PriorityHigh))
	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	task.DueDate = &due
	task.CreatedAt = task.CreatedAt.Truncate(time.Millisecond)
	task.UpdatedAt = task.CreatedAt
	return task
}

func descPtr(s string) *string { return &s }

func priPtr(p domain.Priority) *domain.Priority { return &p }

func testUserCreateAndGetByID(t *testing.T, factory Factory) {
	users, _ := factory(t)
	ctx := context.Background()

	user := domain.NewUser(mustEmail(t, "a@b.com"), "hash-1")
	id, err := users.Create(ctx, user)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != user.ID {
		t.Errorf("returned id %q != user id %q", id, user.ID)
	}

	got, err := users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Email != user.Email || got.PasswordHash != user.PasswordHash {
		t.Errorf("stored user differs: %+v vs %+v", got, user)
	}
}

func testUserGetByEmail(t *testing.T, factory Factory) {
	users, _ := factory(t)
	ctx := context.Background()

	user := domain.NewUser(mustEmail(t, "some.user@example.com"), "hash-1")
	if _, err := users.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A differently-cased raw address normalizes to the same value.
	got, err := users.GetByEmail(ctx, mustEmail(t, "Some.User@EXAMPLE.com"))
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got user %q, want %q", got.ID, user.ID)
	}

	// Substrings must not match.
	if _, err := users.GetByEmail(ctx, mustEmail(t, "user@example.com")); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("substring address matched: err = %v", err)
	}
}

func testUserAbsent(t *testing.T, factory Factory) {
	users, _ := factory(t)
	ctx := context.Background()

	if _, err := users.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetByID: err = %v, want ErrUserNotFound", err)
	}
	if _, err := users.GetByEmail(ctx, mustEmail(t, "ghost@b.com")); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetByEmail: err = %v, want ErrUserNotFound", err)
	}
}

func testTaskRoundTrip(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	task := newTask(t, "u1")
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := tasks.GetByID(ctx, task.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !tasksEqual(got, task) {
		t.Errorf("round trip lost data:\n got %s\nwant %s", dump(got), dump(task))
	}
}

func testTaskOwnership(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	task := newTask(t, "u1")
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := tasks.GetByID(ctx, task.ID, "u2"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("foreign owner read: err = %v, want ErrTaskNotFound", err)
	}
}

func testTaskGetByUser(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	mine := newTask(t, "u1")
	theirs := newTask(t, "u2")
	for _, task := range []*domain.Task{mine, theirs} {
		if _, err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := tasks.GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("GetByUser returned %d tasks, want only the owner's", len(list))
	}
}

func testTaskUpdate(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	task := newTask(t, "u1")
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	task.Title = "Buy bread"
	task.Status = domain.StatusInProgress
	task.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if err := tasks.Update(ctx, task); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := tasks.GetByID(ctx, task.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !tasksEqual(got, task) {
		t.Errorf("update lost data:\n got %s\nwant %s", dump(got), dump(task))
	}
}

func testTaskDelete(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	task := newTask(t, "u1")
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Foreign owner delete is a silent no-op and the task survives.
	if err := tasks.Delete(ctx, task.ID, "u2"); err != nil {
		t.Fatalf("foreign delete must be a no-op, got: %v", err)
	}
	if _, err := tasks.GetByID(ctx, task.ID, "u1"); err != nil {
		t.Fatalf("task vanished after foreign delete: %v", err)
	}

	if err := tasks.Delete(ctx, task.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tasks.GetByID(ctx, task.ID, "u1"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("err = %v, want ErrTaskNotFound after delete", err)
	}
}

func testTaskDeleteMissing(t *testing.T, factory Factory) {
	_, tasks := factory(t)

	if err := tasks.Delete(context.Background(), "never-existed", "u1"); err != nil {
		t.Errorf("deleting a missing task must be a no-op, got: %v", err)
	}
}

func testTaskExists(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	task := newTask(t, "u1")
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err := tasks.Exists(ctx, task.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("Exists = false for a stored task")
	}

	exists, err = tasks.Exists(ctx, "never-existed")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("Exists = true for a missing task")
	}
}

func testConcurrentCreates(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", w)
			for i := 0; i < perWorker; i++ {
				task := domain.NewTask(userID, fmt.Sprintf("task %d", i), nil, nil, nil)
				if _, err := tasks.Create(ctx, task); err != nil {
					t.Errorf("create: %v", err)
					return
				}
				if _, err := tasks.GetByID(ctx, task.ID, userID); err != nil {
					t.Errorf("read own write: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		list, err := tasks.GetByUser(ctx, fmt.Sprintf("u%d", w))
		if err != nil {
			t.Fatalf("get by user: %v", err)
		}
		if len(list) != perWorker {
			t.Errorf("worker %d: %d tasks stored, want %d", w, len(list), perWorker)
		}
	}
}

func testConcurrentUpdates(t *testing.T, factory Factory) {
	_, tasks := factory(t)
	ctx := context.Background()

	task := domain.NewTask("u1", "contended", nil, nil, nil)
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	titles := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		title := fmt.Sprintf("writer-%d", w)
		titles[title] = true
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			update := task.Clone()
			update.Title = title
			if err := tasks.Update(ctx, update); err != nil {
				t.Errorf("update: %v", err)
			}
		}(title)
	}
	wg.Wait()

	got, err := tasks.GetByID(ctx, task.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Any single writer may win, but the record must be one coherent write.
	if !titles[got.Title] {
		t.Errorf("title %q is not any writer's value", got.Title)
	}
}

func tasksEqual(a, b *domain.Task) bool {
	if a.ID != b.ID || a.UserID != b.UserID || a.Title != b.Title || a.Status != b.Status {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) || !a.UpdatedAt.Equal(b.UpdatedAt) {
		return false
	}
	if !reflect.DeepEqual(a.Description, b.Description) {
		return false
	}
	if (a.DueDate == nil) != (b.DueDate == nil) {
		return false
	}
	if a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
		return false
	}
	return reflect.DeepEqual(a.Priority, b.Priority)
}

func dump(t *domain.Task) string {
	return fmt.Sprintf("%+v", *t)
}
