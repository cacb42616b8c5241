package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. Its default List
// implementation mirrors the database pipeline: owner scoping, filtering,
// sorting, and pagination all run in memory so handler tests can exercise
// the full query surface without a database.
type MockTaskStore struct {
	mu sync.RWMutex

	// Function fields for customizable behavior
	ListFn       func(ctx context.Context, userID uuid.UUID, query store.TaskQuery) (*store.TaskPage, error)
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	CreateFn     func(ctx context.Context, task *domain.Task) error
	UpdateFn     func(ctx context.Context, task *domain.Task) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error
	DeleteManyFn func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// Data for the default implementation
	Tasks map[uuid.UUID]*domain.Task

	// Err, when set, is returned by every default operation.
	Err error
}

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Seed adds tasks directly to the backing map, bypassing Create.
func (m *MockTaskStore) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		clone := *t
		m.Tasks[t.ID] = &clone
	}
}

// List implements the TaskStore interface.
func (m *MockTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	query store.TaskQuery,
) (*store.TaskPage, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, query)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	query.Normalize()

	m.mu.RLock()
	matched := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if t.UserID != userID {
			continue
		}
		if query.Status != "" && t.Status != query.Status {
			continue
		}
		if query.Priority != "" && t.Priority != query.Priority {
			continue
		}
		if query.Search != "" && !matchesSearch(t, query.Search) {
			continue
		}
		clone := *t
		matched = append(matched, &clone)
	}
	m.mu.RUnlock()

	sortTasks(matched, query.SortBy, query.Order)

	total := len(matched)
	pages := 0
	if total > 0 {
		pages = (total + query.Limit - 1) / query.Limit
	}

	start := query.Offset()
	if start > total {
		start = total
	}
	end := start + query.Limit
	if end > total {
		end = total
	}

	return &store.TaskPage{
		Tasks: matched[start:end],
		Total: total,
		Page:  query.Page,
		Pages: pages,
	}, nil
}

func matchesSearch(t *domain.Task, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

func sortTasks(tasks []*domain.Task, sortBy, order string) {
	less := func(a, b *domain.Task) bool {
		switch sortBy {
		case "title":
			return a.Title < b.Title
		case "description":
			return a.Description < b.Description
		case "status":
			return a.Status < b.Status
		case "priority":
			return a.Priority < b.Priority
		case "dueDate":
			return timePtrBefore(a.DueDate, b.DueDate)
		case "completed":
			return !a.Completed && b.Completed
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if order == store.OrderAsc {
			return less(tasks[i], tasks[j])
		}
		return less(tasks[j], tasks[i])
	})
}

func timePtrBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *task
	m.Tasks[task.ID] = &clone
	return nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	clone := *task
	m.Tasks[task.ID] = &clone
	return nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// DeleteMany implements the TaskStore interface.
func (m *MockTaskStore) DeleteMany(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) (int64, error) {
	if m.DeleteManyFn != nil {
		return m.DeleteManyFn(ctx, userID, ids)
	}
	if m.Err != nil {
		return 0, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		task, ok := m.Tasks[id]
		if !ok || task.UserID != userID {
			continue
		}
		delete(m.Tasks, id)
		deleted++
	}
	return deleted, nil
}
