package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/docket-api/internal/config"
	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/events"
	"github.com/phrazzld/docket-api/internal/platform/logger"
	"github.com/phrazzld/docket-api/internal/store"
)

// Verify interface compliance at compile time
var _ AuthService = (*authServiceImpl)(nil)

// authServiceImpl implements the AuthService interface.
type authServiceImpl struct {
	userStore    store.UserStore
	sessionStore store.SessionStore
	verifier     PasswordVerifier
	emitter      events.EventEmitter
	db           *sql.DB

	sessionTTL        time.Duration
	passwordMinLength int

	// timeFunc returns the current time. Extracted so expiry checks can be
	// tested against a fixed clock.
	timeFunc func() time.Time

	logger *slog.Logger
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(
	userStore store.UserStore,
	sessionStore store.SessionStore,
	verifier PasswordVerifier,
	emitter events.EventEmitter,
	db *sql.DB,
	cfg config.AuthConfig,
	logger *slog.Logger,
) AuthService {
	// Validate inputs
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		userStore:         userStore,
		sessionStore:      sessionStore,
		verifier:          verifier,
		emitter:           emitter,
		db:                db,
		sessionTTL:        cfg.SessionTTL(),
		passwordMinLength: cfg.PasswordMinLength,
		timeFunc:          time.Now,
		logger:            logger.With("component", "auth_service"),
	}
}

// Register implements AuthService.Register.
// Uses a transaction to ensure atomicity of the account creation.
func (s *authServiceImpl) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The minimum length is deployment policy, so it is checked here rather
	// than in the domain layer. The 72-byte bcrypt ceiling lives in domain.
	if len(password) < s.passwordMinLength {
		log.Debug("registration rejected for short password",
			"username", username,
			"min_length", s.passwordMinLength)
		return nil, fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrValidation, s.passwordMinLength)
	}

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		log.Debug("registration rejected by validation",
			"error", err,
			"username", username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The store hashes the password and maps uniqueness violations to
	// sentinel errors inside the transaction.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)
		return txStore.Create(ctx, user)
	})

	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) || errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration conflict",
				"error", err,
				"username", username)
		} else {
			log.Error("failed to save user",
				"error", err,
				"username", username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.emit(ctx, events.EventUserRegistered, events.UserRegisteredPayload{
		UserID:   user.ID,
		Username: user.Username,
	})

	log.Info("user registered",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// Login implements AuthService.Login.
func (s *authServiceImpl) Login(
	ctx context.Context,
	username, password string,
) (*domain.Session, *domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown username",
				"username", username)
			return nil, nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login",
			"error", err,
			"username", username)
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password",
			"user_id", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	token, err := NewSessionToken()
	if err != nil {
		log.Error("failed to generate session token",
			"error", err,
			"user_id", user.ID)
		return nil, nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session, err := domain.NewSession(user.ID, token, s.sessionTTL)
	if err != nil {
		log.Error("failed to create session",
			"error", err,
			"user_id", user.ID)
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.sessionStore.WithTx(tx)
		return txStore.Create(ctx, session)
	})

	if err != nil {
		log.Error("failed to save session",
			"error", err,
			"user_id", user.ID)
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.emit(ctx, events.EventSessionIssued, events.SessionEventPayload{
		UserID: user.ID,
	})

	log.Info("session issued",
		"user_id", user.ID,
		"expires_at", session.ExpiresAt)

	return session, user, nil
}

// Logout implements AuthService.Logout.
// The lookup and the revocation run in one transaction so the owning user
// is known for the lifecycle event.
func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if token == "" {
		return ErrMissingToken
	}

	var userID uuid.UUID
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.sessionStore.WithTx(tx)

		// Expired and already-revoked sessions are still found here, which
		// is what makes repeated logouts succeed.
		session, err := txStore.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		userID = session.UserID

		return txStore.Revoke(ctx, token)
	})

	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			log.Debug("logout with unrecognized token")
			return ErrInvalidToken
		}
		log.Error("failed to revoke session",
			"error", err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.emit(ctx, events.EventSessionRevoked, events.SessionEventPayload{
		UserID: userID,
	})

	log.Info("session revoked",
		"user_id", userID)

	return nil
}

// Resolve implements AuthService.Resolve.
func (s *authServiceImpl) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if token == "" {
		return uuid.Nil, ErrMissingToken
	}

	session, err := s.sessionStore.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			log.Debug("unrecognized token presented")
			return uuid.Nil, ErrInvalidToken
		}
		log.Error("failed to look up session",
			"error", err)
		return uuid.Nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Revoked {
		log.Debug("revoked session presented",
			"user_id", session.UserID)
		return uuid.Nil, ErrRevokedToken
	}

	if session.ExpiredAt(s.timeFunc()) {
		log.Debug("expired session presented",
			"user_id", session.UserID,
			"expired_at", session.ExpiresAt)
		return uuid.Nil, ErrExpiredToken
	}

	return session.UserID, nil
}

// emit publishes a lifecycle event. Event delivery is best effort: a
// handler failure is logged and never surfaces to the caller, because the
// underlying operation has already committed.
func (s *authServiceImpl) emit(ctx context.Context, eventType string, payload interface{}) {
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		s.logger.Warn("failed to build event",
			"error", err,
			"event_type", eventType)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			"error", err,
			"event_type", eventType)
	}
}
