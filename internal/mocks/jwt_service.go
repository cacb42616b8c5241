package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kindlyhq/kindly-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Token is returned by the default GenerateToken implementation.
	Token string

	// UserID is returned in the claims of the default ValidateToken
	// implementation.
	UserID uuid.UUID

	// ValidateError, when set, is returned by the default ValidateToken.
	ValidateError error
}

// GenerateToken implements the JWTService interface.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	if m.Token != "" {
		return m.Token, nil
	}
	return "test-token-" + userID.String(), nil
}

// ValidateToken implements the JWTService interface.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	if m.ValidateError != nil {
		return nil, m.ValidateError
	}

	now := time.Now()
	return &auth.Claims{
		UserID:    m.UserID,
		Subject:   m.UserID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}
