package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ccarlsson/todo-app/internal/domain"
	"github.com/ccarlsson/todo-app/internal/metrics"
	"github.com/ccarlsson/todo-app/internal/usecase"
	"github.com/ccarlsson/todo-app/internal/validation"
)

type taskUsecaser interface {
	Create(ctx context.Context, input usecase.CreateTaskInput) (string, error)
	Get(ctx context.Context, taskID, userID string) (*domain.Task, error)
	Exists(ctx context.Context, taskID string) (bool, error)
	List(ctx context.Context, input usecase.ListTasksInput) ([]*domain.Task, error)
	Update(ctx context.Context, input usecase.UpdateTaskInput) error
	Delete(ctx context.Context, input usecase.DeleteTaskInput) error
}

type TaskHandler struct {
	taskUsecase taskUsecaser
	logger      *slog.Logger
}

func NewTaskHandler(taskUsecase taskUsecaser, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskUsecase: taskUsecase, logger: logger.With("component", "task_handler")}
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type taskResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Priority    *domain.Priority `json:"priority,omitempty"`
	Status      domain.Status    `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority, ok := parsePriority(req.Priority)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []validation.Violation{
			{Field: "priority", Message: "must be one of: low medium high"},
		}})
		return
	}

	id, err := h.taskUsecase.Create(c.Request.Context(), usecase.CreateTaskInput{
		UserID:      c.GetString("userID"),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    priority,
	})
	if err != nil {
		h.writeTaskError(c, "", err)
		return
	}

	metrics.TasksCreatedTotal.Inc()
	c.JSON(http.StatusCreated, createTaskResponse{ID: id})
}

// GET /tasks
// Query filters that fail to parse are ignored rather than rejected.
func (h *TaskHandler) List(c *gin.Context) {
	input := usecase.ListTasksInput{
		UserID:    c.GetString("userID"),
		DueFilter: c.Query("due_date"),
		SortBy:    c.Query("sort_by"),
	}
	if s, ok := domain.ParseStatus(c.Query("status")); ok {
		input.Status = &s
	}
	if p, ok := domain.ParsePriority(c.Query("priority")); ok {
		input.Priority = &p
	}

	list, err := h.taskUsecase.List(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]taskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.taskUsecase.Get(c.Request.Context(), taskID, c.GetString("userID"))
	if err != nil {
		h.writeTaskError(c, taskID, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority, okPriority := parsePriority(req.Priority)
	status, okStatus := parseStatus(req.Status)
	if !okPriority || !okStatus {
		violations := make([]validation.Violation, 0, 2)
		if !okPriority {
			violations = append(violations, validation.Violation{Field: "priority", Message: "must be one of: low medium high"})
		}
		if !okStatus {
			violations = append(violations, validation.Violation{Field: "status", Message: "must be one of: not_started in_progress completed"})
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": violations})
		return
	}

	taskID := c.Param("id")
	err := h.taskUsecase.Update(c.Request.Context(), usecase.UpdateTaskInput{
		UserID:      c.GetString("userID"),
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    priority,
		Status:      status,
	})
	if err != nil {
		h.writeTaskError(c, taskID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID := c.Param("id")

	err := h.taskUsecase.Delete(c.Request.Context(), usecase.DeleteTaskInput{
		UserID: c.GetString("userID"),
		TaskID: taskID,
	})
	if err != nil {
		h.writeTaskError(c, taskID, err)
		return
	}

	metrics.TasksDeletedTotal.Inc()
	c.Status(http.StatusNoContent)
}

// writeTaskError maps usecase failures to responses. An owner-scoped miss
// is a single "not found" signal from the core; the extra unscoped
// existence check here decides whether the task truly does not exist (404)
// or belongs to someone else (403).
func (h *TaskHandler) writeTaskError(c *gin.Context, taskID string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Violations})
	case errors.Is(err, domain.ErrTaskNotFound):
		exists, existsErr := h.taskUsecase.Exists(c.Request.Context(), taskID)
		if existsErr != nil {
			h.logger.Error("check task existence", "task_id", taskID, "error", existsErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
			return
		}
		if exists {
			c.JSON(http.StatusForbidden, gin.H{"error": errTaskForbidden})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": errTaskNotFound})
	default:
		h.logger.Error("task operation", "task_id", taskID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

// parsePriority maps an optional request string to the domain enum. A nil
// input stays nil (field omitted); ok is false only for a present but
// unrecognized value.
func parsePriority(s *string) (*domain.Priority, bool) {
	if s == nil {
		return nil, true
	}
	p, ok := domain.ParsePriority(*s)
	if !ok {
		return nil, false
	}
	return &p, true
}

func parseStatus(s *string) (*domain.Status, bool) {
	if s == nil {
		return nil, true
	}
	st, ok := domain.ParseStatus(*s)
	if !ok {
		return nil, false
	}
	return &st, true
}
