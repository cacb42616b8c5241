package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kindlyhq/kindly-api/internal/api/middleware"
	"github.com/kindlyhq/kindly-api/internal/api/shared"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/platform/logger"
	"github.com/kindlyhq/kindly-api/internal/store"
)

var taskMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kindly_task_mutations_total",
	Help: "Number of task mutations by operation.",
}, []string{"operation"})

// TaskHandler handles task-related HTTP requests. Every operation is scoped
// to the authenticated user: a task belonging to someone else is reported as
// forbidden, and a task that does not exist as not found.
type TaskHandler struct {
	taskStore store.TaskStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskStore store.TaskStore, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskStore: taskStore,
		validator: validator.New(),
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// respondError maps err to a status code and sanitized message and writes
// the standard error envelope.
func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// authenticatedUser extracts the user ID placed in the context by the auth
// middleware. A missing ID means the route was wired without the middleware,
// so the request is rejected outright.
func authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// ownedTask loads the task named by the URL and verifies it belongs to
// userID. Malformed IDs are indistinguishable from missing tasks.
func (h *TaskHandler) ownedTask(r *http.Request, userID uuid.UUID) (*domain.Task, error) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed task ID", domain.ErrInvalidID)
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != userID {
		return nil, fmt.Errorf("%w: task belongs to another user", domain.ErrUnauthorized)
	}

	return task, nil
}

// parseTaskQuery builds a TaskQuery from the request's query string.
// Unknown sort fields and out-of-range page numbers fall back to defaults
// rather than failing the request.
func parseTaskQuery(r *http.Request) store.TaskQuery {
	q := r.URL.Query()

	query := store.TaskQuery{
		Search:   q.Get("search"),
		Status:   domain.TaskStatus(q.Get("status")),
		Priority: domain.TaskPriority(q.Get("priority")),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		query.Limit = limit
	}
	query.Normalize()
	return query
}

// ListTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	query := parseTaskQuery(r)

	page, err := h.taskStore.List(r.Context(), userID, query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tasks := make([]TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		tasks = append(tasks, newTaskResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Success: true,
		Count:   len(tasks),
		Total:   page.Total,
		Page:    page.Page,
		Pages:   page.Pages,
		Tasks:   tasks,
	})
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	task, err := h.ownedTask(r, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{
		Success: true,
		Task:    newTaskResponse(task),
	})
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Title is required")
		return
	}

	task, err := domain.NewTask(
		userID,
		req.Title,
		req.Description,
		domain.TaskStatus(req.Status),
		domain.TaskPriority(req.Priority),
		req.DueDate,
		req.Tags,
	)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		h.respondError(w, r, err)
		return
	}

	taskMutations.WithLabelValues("create").Inc()
	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, TaskMutationResponse{
		Success: true,
		Message: "Task created successfully",
		Task:    newTaskResponse(task),
	})
}

// UpdateTask handles PUT /api/tasks/{id} requests. Only fields present in
// the body are changed. When both status and completed appear, the explicit
// completed flag wins over the value derived from status.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	task, err := h.ownedTask(r, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Title != nil {
		task.SetTitle(*req.Title)
	}
	if req.Description != nil {
		task.SetDescription(*req.Description)
	}
	if req.Status != nil {
		task.SetStatus(domain.TaskStatus(*req.Status))
	}
	if req.Priority != nil {
		task.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Tags != nil {
		task.Tags = domain.TrimTags(*req.Tags)
	}
	if req.Completed != nil {
		task.ApplyCompleted(*req.Completed)
	}
	task.Touch()

	if err := task.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		h.respondError(w, r, err)
		return
	}

	taskMutations.WithLabelValues("update").Inc()

	shared.RespondWithJSON(w, r, http.StatusOK, TaskMutationResponse{
		Success: true,
		Message: "Task updated successfully",
		Task:    newTaskResponse(task),
	})
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	task, err := h.ownedTask(r, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.taskStore.Delete(r.Context(), task.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	taskMutations.WithLabelValues("delete").Inc()

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{
		Success: true,
		Message: "Task deleted successfully",
	})
}

// BulkDeleteTasks handles DELETE /api/tasks requests. IDs the caller does
// not own (or that do not exist) are silently skipped; the response reports
// how many rows were actually removed.
func (h *TaskHandler) BulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var req BulkDeleteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide task IDs to delete")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Malformed IDs cannot match anything, so they are skipped
			// just like IDs the caller does not own.
			continue
		}
		ids = append(ids, id)
	}

	var deleted int64
	if len(ids) > 0 {
		var err error
		deleted, err = h.taskStore.DeleteMany(r.Context(), userID, ids)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	taskMutations.WithLabelValues("bulk_delete").Add(float64(deleted))

	shared.RespondWithJSON(w, r, http.StatusOK, BulkDeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("%d tasks deleted", deleted),
		DeletedCount: deleted,
	})
}
