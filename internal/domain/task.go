package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field length limits for tasks.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTitleRequired is returned when a task title is missing or blank.
	ErrTitleRequired = errors.New("title is required")

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength.
	ErrTitleTooLong = fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)

	// ErrDescriptionTooLong is returned when a description exceeds MaxDescriptionLength.
	ErrDescriptionTooLong = fmt.Errorf(
		"description cannot exceed %d characters",
		MaxDescriptionLength,
	)

	// ErrInvalidStatus is returned when a task status is not a known value.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority is returned when a task priority is not a known value.
	ErrInvalidPriority = errors.New("invalid task priority")
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority represents the importance level of a task.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether the priority is one of the known values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task represents a single task owned by a user.
//
// Completed is derived state: it must always agree with Status unless a
// caller explicitly overrides it through ApplyCompleted. Every write path
// that touches Status is responsible for keeping the two in sync via
// SetStatus.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Tags        []string     `json:"tags"`
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// Title is mandatory; status defaults to pending and priority to medium.
// All string fields are trimmed. Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate *time.Time,
	tags []string,
) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		Tags:        TrimTags(tags),
		Completed:   status == TaskStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}

	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	return nil
}

// SetTitle replaces the task title, trimming surrounding whitespace so the
// stored value stays normalized on every write path.
func (t *Task) SetTitle(title string) {
	t.Title = strings.TrimSpace(title)
}

// SetDescription replaces the task description, trimmed like SetTitle.
func (t *Task) SetDescription(description string) {
	t.Description = strings.TrimSpace(description)
}

// SetStatus updates the task's status and recomputes the derived Completed
// flag so the two never disagree.
func (t *Task) SetStatus(status TaskStatus) {
	t.Status = status
	t.Completed = status == TaskStatusCompleted
}

// ApplyCompleted sets the Completed flag directly. An explicitly supplied
// value always takes effect, even when it disagrees with Status; callers that
// process a request carrying both status and completed must apply the status
// first and the explicit completed value after it.
func (t *Task) ApplyCompleted(completed bool) {
	t.Completed = completed
}

// Touch updates the UpdatedAt timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// TrimTags returns a copy of tags with each entry trimmed.
// A nil input yields an empty, non-nil slice so tasks always serialize
// with a tags array.
func TrimTags(tags []string) []string {
	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed = append(trimmed, strings.TrimSpace(tag))
	}
	return trimmed
}
