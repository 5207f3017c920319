// Package auth provides account registration and session-based
// authentication. Sessions are opaque bearer tokens backed by server-side
// records: presenting a token grants the identity of the session's owner
// until the session expires or is revoked. Expiry is fixed at issuance
// and never extended by activity.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/docket-api/internal/domain"
)

// AuthService is the entry point for account and session operations.
type AuthService interface {
	// Register creates a new account with the given username, email and
	// password. The password is hashed before storage; the returned user
	// never carries the plaintext.
	//
	// Returns:
	//   - (*domain.User, nil): The created account
	//   - (nil, domain.ErrValidation wrapped): If a field fails validation,
	//     including the configured minimum password length
	//   - (nil, store.ErrUsernameExists / store.ErrEmailExists wrapped): If
	//     the username or email is already taken
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Login verifies the credentials and, on success, issues a new session.
	// The returned session carries the opaque token to hand to the client;
	// the user is returned alongside so callers can echo profile fields.
	//
	// Returns:
	//   - (*domain.Session, *domain.User, nil): On success
	//   - (nil, nil, ErrInvalidCredentials): If the username is unknown or
	//     the password does not match. The two cases are indistinguishable.
	Login(ctx context.Context, username, password string) (*domain.Session, *domain.User, error)

	// Logout revokes the session behind the given token. Revoking an
	// already-revoked or expired session succeeds, so repeated logouts are
	// harmless.
	//
	// Returns:
	//   - nil: If the session exists, whatever its state
	//   - ErrMissingToken: If the token is empty
	//   - ErrInvalidToken: If no session was ever issued for the token
	Logout(ctx context.Context, token string) error

	// Resolve maps a presented token to the owning user's ID. This is the
	// authentication check behind every protected endpoint.
	//
	// Returns:
	//   - (userID, nil): If the session is live
	//   - (uuid.Nil, ErrMissingToken): If the token is empty
	//   - (uuid.Nil, ErrInvalidToken): If no session exists for the token
	//   - (uuid.Nil, ErrRevokedToken): If the session was revoked
	//   - (uuid.Nil, ErrExpiredToken): If the session is past its expiry
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}
