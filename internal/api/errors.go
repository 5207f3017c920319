package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/service/auth"
	"github.com/phrazzld/docket-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Keeping
// the mapping in one place stops handlers from leaking internal error
// types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors, both bad credentials and bad tokens
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken):
		return http.StatusUnauthorized

	// Not found covers ownership mismatches too: a foreign task reports
	// 404, never 403, so task IDs cannot be probed.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Uniqueness conflicts (username, email)
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Store unreachable or timed out; retryable
	case errors.Is(err, store.ErrTransient):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// given error. Internal details never pass through.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrMissingToken):
		return "No token provided"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrRevokedToken):
		return "Token revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Validation errors with messages clients expect
	case errors.Is(err, domain.ErrEmptyTaskTitle):
		return "Title is required"
	case errors.Is(err, domain.ErrInvalidCategory):
		return "Invalid category"
	case errors.Is(err, domain.ErrInvalidDueTime):
		return "Due time must be in HH:MM format"
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrEmptyPassword):
		return "All fields are required"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return "Password must be at most 72 bytes"
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, store.ErrTransient):
		return "Service temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage surfaces the detail of a domain validation error.
// Validation messages are built from fixed strings internally, so the
// text after the sentinel is safe to show.
func validationMessage(err error) string {
	const marker = "validation failed: "

	msg := err.Error()
	idx := strings.LastIndex(msg, marker)
	if idx < 0 {
		return "Validation error"
	}

	detail := msg[idx+len(marker):]
	if detail == "" {
		return "Validation error"
	}
	return strings.ToUpper(detail[:1]) + detail[1:]
}
