package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kindlyhq/kindly-api/internal/api/shared"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/service/auth"
	"github.com/kindlyhq/kindly-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordHasher auth.PasswordHasher,
	passwordVerifier auth.PasswordVerifier,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordHasher:   passwordHasher,
		passwordVerifier: passwordVerifier,
		validator:        validator.New(),
		logger:           log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide name, email and a password of at least 8 characters")
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data")
		return
	}

	hashed, err := h.passwordHasher.Hash(user.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create user", fmt.Errorf("hash password: %w", err))
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already registered")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create user", err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Success: true,
		Token:   token,
		User:    newUserResponse(user),
	})
}

// Login handles POST /api/auth/login requests. A missing user and a wrong
// password produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, GetSafeErrorMessage(ErrInvalidCredentials))
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to authenticate user", err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, GetSafeErrorMessage(ErrInvalidCredentials))
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		User:    newUserResponse(user),
	})
}

// Me handles GET /api/auth/me requests. It resolves the authenticated
// user's profile, which clients use to restore a persisted session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// The token outlived its user.
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load user", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MeResponse{
		Success: true,
		User:    newUserResponse(user),
	})
}
