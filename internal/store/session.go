package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/docket-api/internal/domain"
)

// SessionStore defines the interface for session data persistence.
// The token column is the primary key; sessions are written once at login,
// flipped to revoked at logout, and otherwise only read.
type SessionStore interface {
	// Create saves a newly issued session.
	// Returns ErrTokenExists if a session with the same token already
	// exists (effectively unreachable with 256-bit random tokens).
	// Returns validation errors from the domain Session if data is invalid.
	Create(ctx context.Context, session *domain.Session) error

	// GetByToken retrieves a session by its opaque token.
	// Returns ErrSessionNotFound if no session with that token exists.
	// Expired and revoked sessions are still returned; deciding whether a
	// session resolves is the caller's job, not the store's.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// Revoke marks the session with the given token as revoked. Revoking an
	// already-revoked session succeeds (the observed effect is the same).
	// Returns ErrSessionNotFound if no session with that token exists,
	// which after reaping is indistinguishable from "never issued".
	Revoke(ctx context.Context, token string) error

	// DeleteExpired permanently removes sessions that expired before the
	// given instant, along with revoked sessions. Returns the number of
	// rows removed. Used by the maintenance reaper, never by request paths.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) SessionStore
}
