package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/kindlyhq/kindly-api/internal/domain"
)

// Common request/response structures. Response bodies use camelCase field
// names because that is the shape the web and CLI clients consume.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserResponse is the client-facing projection of a user. The hashed
// password never leaves the server.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// MeResponse defines the response for the current-user endpoint.
type MeResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// CreateTaskRequest defines the payload for task creation. Title is the
// only required field; the rest fall back to domain defaults.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description" validate:"omitempty,max=1000"`
	Status      string     `json:"status"      validate:"omitempty"`
	Priority    string     `json:"priority"    validate:"omitempty"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
}

// UpdateTaskRequest defines the payload for partial task updates. Pointer
// fields distinguish "absent" from "present but empty": only fields that
// appear in the request body overwrite the stored task, but a present empty
// string still overwrites.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        *[]string  `json:"tags"`
	Completed   *bool      `json:"completed"`
}

// BulkDeleteRequest defines the payload for the bulk delete endpoint.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// TaskResponse is the client-facing projection of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskListResponse is the paginated envelope returned by the list endpoint.
// Count is the number of tasks on this page; Total is the number matching
// the filter across all pages.
type TaskListResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	Tasks   []TaskResponse `json:"tasks"`
}

// TaskEnvelope wraps a single task in the standard success envelope.
type TaskEnvelope struct {
	Success bool         `json:"success"`
	Task    TaskResponse `json:"task"`
}

// TaskMutationResponse is returned by create and update operations.
type TaskMutationResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

// DeleteResponse is returned by the single-task delete endpoint.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BulkDeleteResponse is returned by the bulk delete endpoint. DeletedCount
// reports how many of the requested tasks actually belonged to the caller
// and were removed.
type BulkDeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// newTaskResponse projects a domain task into its API representation.
func newTaskResponse(t *domain.Task) TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Tags:        tags,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// newUserResponse projects a domain user into its API representation.
func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
