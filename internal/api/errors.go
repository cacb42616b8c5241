package api

import (
	"errors"
	"net/http"

	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/service/auth"
	"github.com/kindlyhq/kindly-api/internal/store"
)

// ErrInvalidCredentials signals a failed login attempt. It is deliberately
// indistinguishable between "no such user" and "wrong password".
var ErrInvalidCredentials = errors.New("invalid email or password")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors. Malformed task IDs are treated as not found rather
	// than bad requests so the API does not reveal which IDs are plausible.
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Internal error details never reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authentication required"

	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized to access this task"

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"

	// Bad request errors: domain validation messages are written for end
	// users, so they can be surfaced directly.
	case errors.Is(err, domain.ErrTitleRequired):
		return "Title is required"

	case errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
