// Package middleware provides the HTTP middleware chain: session
// authentication, trace IDs, rate limiting, and request metrics.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/docket-api/internal/api/shared"
	"github.com/phrazzld/docket-api/internal/redact"
	"github.com/phrazzld/docket-api/internal/service/auth"
	"github.com/phrazzld/docket-api/internal/store"
)

// AuthMiddleware guards routes behind session token authentication.
type AuthMiddleware struct {
	authService auth.AuthService
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authService auth.AuthService, logger *slog.Logger) *AuthMiddleware {
	if authService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("authService cannot be nil for AuthMiddleware")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthMiddleware{
		authService: authService,
		logger:      logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate resolves the bearer token from the Authorization header
// and adds the owning account ID to the request context. Requests with
// a missing, malformed, expired, or revoked token are rejected before
// the handler runs.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "No token provided")
			return
		}

		token, ok := shared.BearerToken(header)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		userID, err := m.authService.Resolve(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrRevokedToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token revoked")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			case errors.Is(err, store.ErrTransient):
				m.logger.Warn("session lookup unavailable", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
			default:
				m.logger.Error("failed to resolve session token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the user ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}
