package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/kindlyhq/kindly-api/internal/domain"
)

// Sort orders accepted by TaskQuery.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Pagination defaults for TaskQuery.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// TaskQuery describes the filter, sort, and pagination parameters of a
// task listing. The zero value lists the owner's tasks with the default
// sort (createdAt descending) and the default page size.
type TaskQuery struct {
	// Search is an optional free-text filter matched case-insensitively
	// against title or description.
	Search string

	// Status filters on an exact task status when non-empty.
	Status domain.TaskStatus

	// Priority filters on an exact task priority when non-empty.
	Priority domain.TaskPriority

	// SortBy names the task field to sort on. Unknown or empty values
	// fall back to createdAt.
	SortBy string

	// Order is "asc" or "desc"; anything else means descending.
	Order string

	// Page is 1-based; values below 1 mean the first page.
	Page int

	// Limit is the page size; values below 1 mean DefaultLimit.
	Limit int
}

// Normalize fills in query defaults in place and returns the receiver
// for chaining.
func (q *TaskQuery) Normalize() *TaskQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Order != OrderAsc {
		q.Order = OrderDesc
	}
	return q
}

// Offset returns the number of rows to skip for the query's page.
func (q *TaskQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// TaskPage is one page of a task listing together with its totals.
type TaskPage struct {
	// Tasks holds the page of matching tasks.
	Tasks []*domain.Task

	// Total is the number of tasks matching the query across all pages.
	Total int

	// Page echoes the 1-based page that was requested.
	Page int

	// Pages is ceil(Total/Limit).
	Pages int
}

// TaskStore defines the interface for task data persistence.
// All listing and bulk operations are owner-scoped; single-task lookups
// return the task regardless of owner so the caller can distinguish
// "not found" from "not yours".
type TaskStore interface {
	// List returns the page of tasks matching the query, scoped to the
	// given owner. A query with no filters matches all of the owner's
	// tasks and never anyone else's.
	List(ctx context.Context, userID uuid.UUID, query TaskQuery) (*TaskPage, error)

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Update persists the full state of an existing task. Partial-field
	// merging happens in the handler before this call; the store writes
	// every mutable column.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete hard-removes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist; a second delete
	// of the same ID therefore fails.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMany hard-removes every task whose ID is in ids AND whose
	// owner is userID, as a single set-scoped delete. IDs that do not
	// resolve or belong to someone else are silently skipped. Returns the
	// number of tasks actually deleted.
	DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}
