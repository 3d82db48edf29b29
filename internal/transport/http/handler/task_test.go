package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/usecase"
)

type fakeTaskUsecase struct {
	createFn func(ctx context.Context, input usecase.CreateTaskInput) (string, error)
	getFn    func(ctx context.Context, taskID, userID string) (*domain.Task, error)
	existsFn func(ctx context.Context, taskID string) (bool, error)
	listFn   func(ctx context.Context, input usecase.ListTasksInput) ([]*domain.Task, error)
	updateFn func(ctx context.Context, input usecase.UpdateTaskInput) error
	deleteFn func(ctx context.Context, input usecase.DeleteTaskInput) error
}

func (f *fakeTaskUsecase) Create(ctx context.Context, input usecase.CreateTaskInput) (string, error) {
	return f.createFn(ctx, input)
}

func (f *fakeTaskUsecase) Get(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	return f.getFn(ctx, taskID, userID)
}

func (f *fakeTaskUsecase) Exists(ctx context.Context, taskID string) (bool, error) {
	return f.existsFn(ctx, taskID)
}

func (f *fakeTaskUsecase) List(ctx context.Context, input usecase.ListTasksInput) ([]*domain.Task, error) {
	return f.listFn(ctx, input)
}

func (f *fakeTaskUsecase) Update(ctx context.Context, input usecase.UpdateTaskInput) error {
	return f.updateFn(ctx, input)
}

func (f *fakeTaskUsecase) Delete(ctx context.Context, input usecase.DeleteTaskInput) error {
	return f.deleteFn(ctx, input)
}

// taskEngine wires the handler behind a stub identity middleware standing in
// for the real JWT one.
func taskEngine(uc taskUsecaser, userID string) *gin.Engine {
	h := NewTaskHandler(uc, discardLogger())
	r := gin.New()
	g := r.Group("/tasks", func(c *gin.Context) { c.Set("userID", userID) })
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask_Created(t *testing.T) {
	uc := &fakeTaskUsecase{
		createFn: func(_ context.Context, input usecase.CreateTaskInput) (string, error) {
			if input.UserID != "u1" {
				t.Errorf("userID = %q, want %q", input.UserID, "u1")
			}
			if input.Title != "Buy milk" {
				t.Errorf("title = %q", input.Title)
			}
			if input.Priority == nil || *input.Priority != domain.PriorityHigh {
				t.Errorf("priority = %v, want high", input.Priority)
			}
			return "task-1", nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodPost, "/tasks",
		`{"title":"Buy milk","priority":"HIGH"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp createTaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "task-1" {
		t.Errorf("id = %q", resp.ID)
	}
}

// A priority in the request body that is not a known value is rejected,
// unlike query filters which are silently ignored.
func TestCreateTask_UnknownPriority_Returns400(t *testing.T) {
	uc := &fakeTaskUsecase{
		createFn: func(_ context.Context, _ usecase.CreateTaskInput) (string, error) {
			t.Fatal("usecase should not be called")
			return "", nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodPost, "/tasks",
		`{"title":"Buy milk","priority":"urgent"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListTasks_UnparseableFiltersIgnored(t *testing.T) {
	var got usecase.ListTasksInput
	uc := &fakeTaskUsecase{
		listFn: func(_ context.Context, input usecase.ListTasksInput) ([]*domain.Task, error) {
			got = input
			return nil, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodGet,
		"/tasks?status=bogus&priority=IN_PROGRESS&due_date=overdue", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Status != nil {
		t.Errorf("status filter = %v, want nil (unparseable ignored)", *got.Status)
	}
	if got.Priority != nil {
		t.Errorf("priority filter = %v, want nil (not a priority)", *got.Priority)
	}
	if got.DueFilter != "overdue" {
		t.Errorf("due filter = %q", got.DueFilter)
	}
}

func TestListTasks_ParsesFiltersAndReturnsBody(t *testing.T) {
	task := domain.NewTask("u1", "Write report", nil, nil, nil)
	uc := &fakeTaskUsecase{
		listFn: func(_ context.Context, input usecase.ListTasksInput) ([]*domain.Task, error) {
			if input.Status == nil || *input.Status != domain.StatusInProgress {
				t.Errorf("status filter = %v, want in_progress", input.Status)
			}
			if input.Priority == nil || *input.Priority != domain.PriorityLow {
				t.Errorf("priority filter = %v, want low", input.Priority)
			}
			return []*domain.Task{task}, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodGet,
		"/tasks?status=in_progress&priority=low&sort_by=duedate", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp []taskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].Title != "Write report" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetTask_OK(t *testing.T) {
	due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	task := domain.NewTask("u1", "Ship release", nil, &due, nil)
	uc := &fakeTaskUsecase{
		getFn: func(_ context.Context, taskID, userID string) (*domain.Task, error) {
			if taskID != task.ID || userID != "u1" {
				t.Errorf("get(%q, %q)", taskID, userID)
			}
			return task, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodGet, "/tasks/"+task.ID, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp taskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != task.ID || resp.Status != domain.StatusNotStarted {
		t.Errorf("response = %+v", resp)
	}
	if resp.DueDate == nil || !resp.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", resp.DueDate, due)
	}
}

// An owner-scoped miss is disambiguated with an unscoped existence probe:
// a task that exists under another owner answers 403, a missing one 404.
func TestGetTask_OtherOwners_Returns403(t *testing.T) {
	uc := &fakeTaskUsecase{
		getFn: func(_ context.Context, _, _ string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
		existsFn: func(_ context.Context, taskID string) (bool, error) {
			return true, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodGet, "/tasks/t9", "")

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGetTask_Missing_Returns404(t *testing.T) {
	uc := &fakeTaskUsecase{
		getFn: func(_ context.Context, _, _ string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
		existsFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodGet, "/tasks/missing", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateTask_NoContent(t *testing.T) {
	uc := &fakeTaskUsecase{
		updateFn: func(_ context.Context, input usecase.UpdateTaskInput) error {
			if input.TaskID != "t1" || input.UserID != "u1" {
				t.Errorf("input = %+v", input)
			}
			if input.Status == nil || *input.Status != domain.StatusCompleted {
				t.Errorf("status = %v, want completed", input.Status)
			}
			if input.Title != nil {
				t.Errorf("title = %v, want nil (omitted)", *input.Title)
			}
			return nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodPut, "/tasks/t1",
		`{"status":"completed"}`)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204: %s", w.Code, w.Body.String())
	}
}

func TestUpdateTask_BothEnumsBad_ReportsBothViolations(t *testing.T) {
	uc := &fakeTaskUsecase{
		updateFn: func(_ context.Context, _ usecase.UpdateTaskInput) error {
			t.Fatal("usecase should not be called")
			return nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodPut, "/tasks/t1",
		`{"status":"done","priority":"urgent"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "priority") || !strings.Contains(body, "status") {
		t.Errorf("body should name both fields: %s", body)
	}
}

func TestUpdateTask_OtherOwners_Returns403(t *testing.T) {
	uc := &fakeTaskUsecase{
		updateFn: func(_ context.Context, _ usecase.UpdateTaskInput) error {
			return domain.ErrTaskNotFound
		},
		existsFn: func(_ context.Context, _ string) (bool, error) {
			return true, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodPut, "/tasks/t1", `{"title":"x"}`)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestDeleteTask_NoContent(t *testing.T) {
	uc := &fakeTaskUsecase{
		deleteFn: func(_ context.Context, input usecase.DeleteTaskInput) error {
			if input.TaskID != "t1" || input.UserID != "u1" {
				t.Errorf("input = %+v", input)
			}
			return nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodDelete, "/tasks/t1", "")

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestDeleteTask_Missing_Returns404(t *testing.T) {
	uc := &fakeTaskUsecase{
		deleteFn: func(_ context.Context, _ usecase.DeleteTaskInput) error {
			return domain.ErrTaskNotFound
		},
		existsFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	}

	w := doRequest(t, taskEngine(uc, "u1"), http.MethodDelete, "/tasks/t1", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
