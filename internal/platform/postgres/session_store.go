package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/platform/logger"
	"github.com/phrazzld/docket-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create
// It saves a newly issued session. The token is the primary key, so a
// collision surfaces as store.ErrTokenExists instead of overwriting an
// existing session. Returns store.ErrInvalidEntity if the owning user no
// longer exists (foreign key violation).
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", session.UserID.String()))
		return err
	}

	query := `
		INSERT INTO sessions (token, user_id, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.Token,
		session.UserID,
		session.IssuedAt,
		session.ExpiresAt,
		session.Revoked,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Error("session token collision",
				slog.String("user_id", session.UserID.String()))
			return fmt.Errorf("%w: %v", store.ErrTokenExists, err)
		}

		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("user_id", session.UserID.String()))
		return MapError(err)
	}

	log.Info("session created successfully",
		slog.String("user_id", session.UserID.String()),
		slog.Time("expires_at", session.ExpiresAt))
	return nil
}

// GetByToken implements store.SessionStore.GetByToken
// It returns the session row regardless of its revoked or expired state;
// liveness decisions belong to the service layer.
// Returns store.ErrSessionNotFound if no session with that token exists.
func (s *PostgresSessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving session by token")

	query := `
		SELECT token, user_id, issued_at, expires_at, revoked
		FROM sessions
		WHERE token = $1
	`

	var session domain.Session

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.Revoked,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found")
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session by token",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &session, nil
}

// Revoke implements store.SessionStore.Revoke
// The update touches the row whether or not it was already revoked, so
// repeated logouts succeed. Only a token with no row at all reports
// store.ErrSessionNotFound.
func (s *PostgresSessionStore) Revoke(ctx context.Context, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE sessions
		SET revoked = TRUE
		WHERE token = $1
	`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		log.Error("failed to revoke session",
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("session not found for revocation")
		return store.ErrSessionNotFound
	}

	log.Info("session revoked successfully")
	return nil
}

// DeleteExpired implements store.SessionStore.DeleteExpired
// It removes sessions that expired before the given instant along with
// revoked sessions, and reports how many rows went away.
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM sessions
		WHERE expires_at < $1 OR revoked = TRUE
	`

	result, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		log.Error("failed to delete expired sessions",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()))
		return 0, err
	}

	log.Debug("expired sessions deleted",
		slog.Int64("count", rowsAffected),
		slog.Time("before", before))
	return rowsAffected, nil
}

// WithTx implements store.SessionStore.WithTx
// It returns a store bound to the given transaction with the same settings.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
