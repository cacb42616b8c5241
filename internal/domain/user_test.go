package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("Ada", "  Ada@Example.COM ", "correct-horse-battery")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email, "email should be normalized")
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			userName string
			email    string
			password string
			wantErr  error
		}{
			{"empty name", "", "a@b.io", "long-enough-pass", domain.ErrEmptyName},
			{"empty email", "Ada", "", "long-enough-pass", domain.ErrEmptyEmail},
			{"no at sign", "Ada", "nobody.example.com", "long-enough-pass", domain.ErrInvalidEmail},
			{"no domain dot", "Ada", "nobody@example", "long-enough-pass", domain.ErrInvalidEmail},
			{"short password", "Ada", "a@b.io", "short", domain.ErrPasswordTooShort},
			{
				"long password",
				"Ada",
				"a@b.io",
				strings.Repeat("x", domain.MaxPasswordLength+1),
				domain.ErrPasswordTooLong,
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := domain.NewUser(tc.userName, tc.email, tc.password)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestUser_Validate_StoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the store has no plaintext password, only the hash.
	user := &domain.User{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}
