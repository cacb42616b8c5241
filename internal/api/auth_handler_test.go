package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindlyhq/kindly-api/internal/api/shared"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/mocks"
)

func newAuthRouter(h *AuthHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Get("/api/auth/me", h.Me)
	})
	return r
}

func newAuthHandlerForTest(userStore *mocks.MockUserStore) *AuthHandler {
	return NewAuthHandler(
		userStore,
		&mocks.MockJWTService{},
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{},
		nil,
	)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("registers and returns token", func(t *testing.T) {
		userStore := mocks.NewMockUserStore()
		router := newAuthRouter(newAuthHandlerForTest(userStore), uuid.Nil)

		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Name:     "Ada Lovelace",
			Email:    "Ada@Example.com",
			Password: "correct-horse",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp AuthResponse
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Ada Lovelace", resp.User.Name)
		// Email is normalized to lowercase before storage.
		assert.Equal(t, "ada@example.com", resp.User.Email)

		stored, err := userStore.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hashed:correct-horse", stored.HashedPassword)
		assert.Empty(t, stored.Password)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		userStore := mocks.NewMockUserStore()
		router := newAuthRouter(newAuthHandlerForTest(userStore), uuid.Nil)

		body := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"}
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/auth/register", body)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp shared.ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Email already registered", resp.Message)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		router := newAuthRouter(newAuthHandlerForTest(mocks.NewMockUserStore()), uuid.Nil)

		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "ada@example.com",
			Password: "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		router := newAuthRouter(newAuthHandlerForTest(mocks.NewMockUserStore()), uuid.Nil)

		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Name:     "Ada",
			Email:    "not-an-email",
			Password: "correct-horse",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	registered := func(t *testing.T) (*mocks.MockUserStore, *domain.User) {
		t.Helper()
		userStore := mocks.NewMockUserStore()
		user, err := domain.NewUser("Ada", "ada@example.com", "correct-horse")
		require.NoError(t, err)
		user.HashedPassword = "hashed:correct-horse"
		user.Password = ""
		require.NoError(t, userStore.Create(context.Background(), user))
		return userStore, user
	}

	t.Run("valid credentials", func(t *testing.T) {
		userStore, user := registered(t)
		router := newAuthRouter(newAuthHandlerForTest(userStore), uuid.Nil)

		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "correct-horse",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		userStore, _ := registered(t)
		router := newAuthRouter(newAuthHandlerForTest(userStore), uuid.Nil)

		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "wrong-horse",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp shared.ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Invalid email or password", resp.Message)
	})

	t.Run("unknown email matches wrong password response", func(t *testing.T) {
		userStore, _ := registered(t)
		router := newAuthRouter(newAuthHandlerForTest(userStore), uuid.Nil)

		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "nobody@example.com",
			Password: "correct-horse",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp shared.ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Invalid email or password", resp.Message)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		userStore := mocks.NewMockUserStore()
		user, err := domain.NewUser("Ada", "ada@example.com", "correct-horse")
		require.NoError(t, err)
		user.HashedPassword = "hashed:correct-horse"
		user.Password = ""
		require.NoError(t, userStore.Create(context.Background(), user))

		router := newAuthRouter(newAuthHandlerForTest(userStore), user.ID)

		rec := doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp MeResponse
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.Equal(t, "ada@example.com", resp.User.Email)
	})

	t.Run("deleted user is unauthorized", func(t *testing.T) {
		router := newAuthRouter(newAuthHandlerForTest(mocks.NewMockUserStore()), uuid.New())

		rec := doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
