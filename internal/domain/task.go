package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParseStatus matches case-insensitively and tolerates the underscore
// being omitted ("InProgress" and "in_progress" are the same value).
func ParseStatus(s string) (Status, bool) {
	switch normalizeEnum(s) {
	case "notstarted":
		return StatusNotStarted, true
	case "inprogress":
		return StatusInProgress, true
	case "completed":
		return StatusCompleted, true
	}
	return "", false
}

func ParsePriority(s string) (Priority, bool) {
	switch normalizeEnum(s) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	}
	return "", false
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "")
}

type Task struct {
	ID          string
	UserID      string // owner; set once at creation, never reassigned
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    *Priority
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a task owned by userID. The title is stored trimmed and
// the status always starts as not_started.
func NewTask(userID, title string, description *string, dueDate *time.Time, priority *Priority) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      StatusNotStarted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Update applies partial-update semantics: a nil field means "leave
// unchanged", never "clear". A title that is nil or blank after trimming is
// ignored. There is consequently no way to clear a description, due date or
// priority once set; callers that need that would need a new contract.
// UpdatedAt advances on every call.
func (t *Task) Update(title, description *string, dueDate *time.Time, priority *Priority, status *Status) {
	if title != nil && strings.TrimSpace(*title) != "" {
		t.Title = *title
	}
	if description != nil {
		t.Description = description
	}
	if dueDate != nil {
		t.DueDate = dueDate
	}
	if priority != nil {
		t.Priority = priority
	}
	if status != nil {
		t.Status = *status
	}
	t.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so stored state can never be mutated through a
// previously returned pointer.
func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Priority != nil {
		p := *t.Priority
		c.Priority = &p
	}
	return &c
}
