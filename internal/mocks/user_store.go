package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	mu sync.RWMutex

	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)

	// Data for the default implementation
	Users map[uuid.UUID]*domain.User

	// Errors returned by the default implementation when set
	CreateError error
	GetError    error
}

// NewMockUserStore creates a new mock store with initialized defaults.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[uuid.UUID]*domain.User),
	}
}

// Create implements the UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Users {
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrEmailExists
		}
	}

	clone := *user
	m.Users[user.ID] = &clone
	return nil
}

// GetByID implements the UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByEmail implements the UserStore interface.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.Users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}
