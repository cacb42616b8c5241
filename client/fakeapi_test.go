package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// fakeAPI is a minimal in-memory stand-in for the real server, speaking
// the same envelopes over httptest.
type fakeAPI struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]Task
	seq   int

	token string
	user  User

	// failNextCreate makes the next create return a 400.
	failNextCreate bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()

	f := &fakeAPI{
		tasks: make(map[uuid.UUID]Task),
		token: "valid-token",
		user:  User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"},
	}

	r := chi.NewRouter()
	r.Post("/api/auth/register", f.handleAuth)
	r.Post("/api/auth/login", f.handleAuth)
	r.Get("/api/auth/me", f.handleMe)
	r.Get("/api/tasks", f.handleList)
	r.Post("/api/tasks", f.handleCreate)
	r.Put("/api/tasks/{id}", f.handleUpdate)
	r.Delete("/api/tasks/{id}", f.handleDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return f, New(srv.URL, WithToken(f.token))
}

// seed inserts a task directly, with creation times spaced so ordering is
// deterministic.
func (f *fakeAPI) seed(title string) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	task := Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    "pending",
		Priority:  "medium",
		Tags:      []string{},
		CreatedAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute),
	}
	task.UpdatedAt = task.CreatedAt
	f.tasks[task.ID] = task
	return task
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeAPI) get(id uuid.UUID) (Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	return task, ok
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Success: false, Message: message})
}

func (f *fakeAPI) handleAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authEnvelope{Success: true, Token: f.token, User: f.user})
}

func (f *fakeAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	writeJSON(w, http.StatusOK, meEnvelope{Success: true, User: f.user})
}

func (f *fakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	all := make([]Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		all = append(all, t)
	}
	f.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	limit := len(all)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n < limit {
			limit = n
		}
	}
	page := all[:limit]

	writeJSON(w, http.StatusOK, listEnvelope{
		Success: true,
		Count:   len(page),
		Total:   len(all),
		Page:    1,
		Pages:   1,
		Tasks:   page,
	})
}

func (f *fakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	if f.failNextCreate {
		f.failNextCreate = false
		f.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	f.mu.Unlock()

	var req TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Status == "" {
		req.Status = "pending"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	f.mu.Lock()
	f.seq++
	task := Task{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		Completed:   req.Status == "completed",
		CreatedAt:   time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute),
	}
	task.UpdatedAt = task.CreatedAt
	f.tasks[task.ID] = task
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, taskEnvelope{Success: true, Message: "Task created successfully", Task: task})
}

func (f *fakeAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	var req TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Status != nil {
		task.Status = *req.Status
		task.Completed = task.Status == "completed"
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.UpdatedAt = task.UpdatedAt.Add(time.Second)
	f.tasks[id] = task

	writeJSON(w, http.StatusOK, taskEnvelope{Success: true, Message: "Task updated successfully", Task: task})
}

func (f *fakeAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[id]; !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	delete(f.tasks, id)

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Task deleted successfully"})
}
