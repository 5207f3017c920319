package auth

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/docket-api/internal/config"
	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/events"
	"github.com/phrazzld/docket-api/internal/mocks"
	"github.com/phrazzld/docket-api/internal/store"
)

// capturingHandler records every event it receives so tests can assert on
// the lifecycle events a service operation emitted.
type capturingHandler struct {
	mu     sync.Mutex
	events []*events.Event
}

func (c *capturingHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingHandler) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]string, 0, len(c.events))
	for _, event := range c.events {
		types = append(types, event.Type)
	}
	return types
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		BcryptCost:         4,
		PasswordMinLength:  8,
		SessionTTLMinutes:  24 * 60,
		RateLimitPerMinute: 60,
		RateLimitBurst:     10,
	}
}

// testEnv bundles the service under test with its collaborators.
type testEnv struct {
	svc          *authServiceImpl
	userStore    *mocks.MockUserStore
	sessionStore *mocks.MockSessionStore
	verifier     *mocks.MockPasswordVerifier
	captured     *capturingHandler
	dbMock       sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}

	captured := &capturingHandler{}
	emitter := events.NewInMemoryEventEmitter(newDiscardLogger())
	emitter.RegisterHandler(captured)

	svc := NewAuthService(
		userStore,
		sessionStore,
		verifier,
		emitter,
		db,
		testAuthConfig(),
		newDiscardLogger(),
	)

	return &testEnv{
		svc:          svc.(*authServiceImpl),
		userStore:    userStore,
		sessionStore: sessionStore,
		verifier:     verifier,
		captured:     captured,
		dbMock:       dbMock,
	}
}

// seedUser places an account in the mock store the way the real store
// would persist it, with only a hashed password.
func seedUser(t *testing.T, env *testEnv, username, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: "bcrypt-hash-placeholder",
		CreatedAt:      time.Now().UTC(),
	}
	env.userStore.AddUser(user)
	return user
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and emits event", func(t *testing.T) {
		env := newTestEnv(t)
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectCommit()

		user, err := env.svc.Register(ctx, "alice", "alice@example.com", "correct-horse-battery")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, uuid.Nil, user.ID)

		require.Equal(t, []string{events.EventUserRegistered}, env.captured.types())
		var payload events.UserRegisteredPayload
		require.NoError(t, env.captured.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, user.ID, payload.UserID)
		assert.Equal(t, "alice", payload.Username)

		assert.NoError(t, env.dbMock.ExpectationsWereMet())
	})

	t.Run("rejects password below minimum length", func(t *testing.T) {
		env := newTestEnv(t)

		user, err := env.svc.Register(ctx, "alice", "alice@example.com", "short")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Nil(t, user)
		assert.Empty(t, env.captured.types())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		env := newTestEnv(t)

		user, err := env.svc.Register(ctx, "alice", "not-an-email", "correct-horse-battery")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Nil(t, user)
	})

	t.Run("reports username conflict", func(t *testing.T) {
		env := newTestEnv(t)
		seedUser(t, env, "alice", "alice@example.com")
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectRollback()

		user, err := env.svc.Register(ctx, "alice", "other@example.com", "correct-horse-battery")
		assert.ErrorIs(t, err, store.ErrUsernameExists)
		assert.Nil(t, user)
		assert.Empty(t, env.captured.types())
		assert.NoError(t, env.dbMock.ExpectationsWereMet())
	})

	t.Run("reports email conflict", func(t *testing.T) {
		env := newTestEnv(t)
		seedUser(t, env, "bob", "taken@example.com")
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectRollback()

		user, err := env.svc.Register(ctx, "carol", "taken@example.com", "correct-horse-battery")
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.Nil(t, user)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues session for valid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		seeded := seedUser(t, env, "alice", "alice@example.com")
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectCommit()

		session, user, err := env.svc.Login(ctx, "alice", "correct-horse-battery")
		require.NoError(t, err)
		require.NotNil(t, session)
		require.NotNil(t, user)

		assert.Equal(t, seeded.ID, user.ID)
		assert.Equal(t, seeded.ID, session.UserID)
		assert.False(t, session.Revoked)
		assert.Equal(t, 24*time.Hour, session.ExpiresAt.Sub(session.IssuedAt))

		// The token is opaque: 32 random bytes, hex encoded.
		assert.Len(t, session.Token, 64)
		_, err = hex.DecodeString(session.Token)
		assert.NoError(t, err)

		// The session reached the store and the lifecycle event fired.
		_, ok := env.sessionStore.Sessions[session.Token]
		assert.True(t, ok)
		assert.Equal(t, []string{events.EventSessionIssued}, env.captured.types())

		// The verifier saw the stored hash, not the plaintext.
		assert.Equal(t, seeded.HashedPassword, env.verifier.CompareCalledWith.HashedPassword)
		assert.Equal(t, "correct-horse-battery", env.verifier.CompareCalledWith.Password)

		assert.NoError(t, env.dbMock.ExpectationsWereMet())
	})

	t.Run("rejects unknown username", func(t *testing.T) {
		env := newTestEnv(t)

		session, user, err := env.svc.Login(ctx, "nobody", "whatever-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session)
		assert.Nil(t, user)
	})

	t.Run("rejects wrong password with the same error", func(t *testing.T) {
		env := newTestEnv(t)
		seedUser(t, env, "alice", "alice@example.com")
		env.verifier.ShouldSucceed = false

		session, user, err := env.svc.Login(ctx, "alice", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session)
		assert.Nil(t, user)
		assert.Empty(t, env.captured.types())
	})

	t.Run("surfaces session store failure", func(t *testing.T) {
		env := newTestEnv(t)
		seedUser(t, env, "alice", "alice@example.com")
		env.sessionStore.CreateError = store.ErrTransient
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectRollback()

		session, user, err := env.svc.Login(ctx, "alice", "correct-horse-battery")
		assert.ErrorIs(t, err, store.ErrTransient)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, session)
		assert.Nil(t, user)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes live session and emits event", func(t *testing.T) {
		env := newTestEnv(t)
		userID := uuid.New()
		session, err := domain.NewSession(userID, "live-session-token", time.Hour)
		require.NoError(t, err)
		env.sessionStore.AddSession(session)
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectCommit()

		require.NoError(t, env.svc.Logout(ctx, "live-session-token"))
		assert.True(t, env.sessionStore.Sessions["live-session-token"].Revoked)

		require.Equal(t, []string{events.EventSessionRevoked}, env.captured.types())
		var payload events.SessionEventPayload
		require.NoError(t, env.captured.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, userID, payload.UserID)
	})

	t.Run("succeeds again for already revoked session", func(t *testing.T) {
		env := newTestEnv(t)
		session, err := domain.NewSession(uuid.New(), "revoked-token", time.Hour)
		require.NoError(t, err)
		session.Revoked = true
		env.sessionStore.AddSession(session)
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectCommit()

		assert.NoError(t, env.svc.Logout(ctx, "revoked-token"))
	})

	t.Run("succeeds for expired session", func(t *testing.T) {
		env := newTestEnv(t)
		issued := time.Now().UTC().Add(-48 * time.Hour)
		env.sessionStore.AddSession(&domain.Session{
			Token:     "expired-token",
			UserID:    uuid.New(),
			IssuedAt:  issued,
			ExpiresAt: issued.Add(24 * time.Hour),
		})
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectCommit()

		assert.NoError(t, env.svc.Logout(ctx, "expired-token"))
	})

	t.Run("rejects token that was never issued", func(t *testing.T) {
		env := newTestEnv(t)
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectRollback()

		err := env.svc.Logout(ctx, "never-issued-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Empty(t, env.captured.types())
	})

	t.Run("rejects empty token", func(t *testing.T) {
		env := newTestEnv(t)

		assert.ErrorIs(t, env.svc.Logout(ctx, ""), ErrMissingToken)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newEnvAtFixedTime := func(t *testing.T) *testEnv {
		env := newTestEnv(t)
		env.svc.timeFunc = func() time.Time { return fixedTime }
		return env
	}

	t.Run("returns owner for live session", func(t *testing.T) {
		env := newEnvAtFixedTime(t)
		userID := uuid.New()
		env.sessionStore.AddSession(&domain.Session{
			Token:     "live-token",
			UserID:    userID,
			IssuedAt:  fixedTime.Add(-time.Hour),
			ExpiresAt: fixedTime.Add(time.Hour),
		})

		resolved, err := env.svc.Resolve(ctx, "live-token")
		require.NoError(t, err)
		assert.Equal(t, userID, resolved)
	})

	t.Run("session is still live at the exact expiry instant", func(t *testing.T) {
		env := newEnvAtFixedTime(t)
		userID := uuid.New()
		env.sessionStore.AddSession(&domain.Session{
			Token:     "boundary-token",
			UserID:    userID,
			IssuedAt:  fixedTime.Add(-24 * time.Hour),
			ExpiresAt: fixedTime,
		})

		resolved, err := env.svc.Resolve(ctx, "boundary-token")
		require.NoError(t, err)
		assert.Equal(t, userID, resolved)
	})

	t.Run("rejects session past its expiry", func(t *testing.T) {
		env := newEnvAtFixedTime(t)
		env.sessionStore.AddSession(&domain.Session{
			Token:     "stale-token",
			UserID:    uuid.New(),
			IssuedAt:  fixedTime.Add(-25 * time.Hour),
			ExpiresAt: fixedTime.Add(-time.Nanosecond),
		})

		resolved, err := env.svc.Resolve(ctx, "stale-token")
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Equal(t, uuid.Nil, resolved)
	})

	t.Run("rejects revoked session", func(t *testing.T) {
		env := newEnvAtFixedTime(t)
		env.sessionStore.AddSession(&domain.Session{
			Token:     "revoked-token",
			UserID:    uuid.New(),
			IssuedAt:  fixedTime.Add(-time.Hour),
			ExpiresAt: fixedTime.Add(time.Hour),
			Revoked:   true,
		})

		resolved, err := env.svc.Resolve(ctx, "revoked-token")
		assert.ErrorIs(t, err, ErrRevokedToken)
		assert.Equal(t, uuid.Nil, resolved)
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		env := newEnvAtFixedTime(t)

		resolved, err := env.svc.Resolve(ctx, "never-issued-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Equal(t, uuid.Nil, resolved)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		env := newEnvAtFixedTime(t)

		resolved, err := env.svc.Resolve(ctx, "")
		assert.ErrorIs(t, err, ErrMissingToken)
		assert.Equal(t, uuid.Nil, resolved)
	})

	t.Run("expiry is never extended by resolving", func(t *testing.T) {
		env := newEnvAtFixedTime(t)
		expiresAt := fixedTime.Add(time.Minute)
		env.sessionStore.AddSession(&domain.Session{
			Token:     "fixed-expiry-token",
			UserID:    uuid.New(),
			IssuedAt:  fixedTime.Add(-time.Hour),
			ExpiresAt: expiresAt,
		})

		for i := 0; i < 3; i++ {
			_, err := env.svc.Resolve(ctx, "fixed-expiry-token")
			require.NoError(t, err)
		}
		assert.Equal(t, expiresAt, env.sessionStore.Sessions["fixed-expiry-token"].ExpiresAt)

		// Once past the original expiry, the session stops resolving no
		// matter how recently it was used.
		env.svc.timeFunc = func() time.Time { return expiresAt.Add(time.Second) }
		_, err := env.svc.Resolve(ctx, "fixed-expiry-token")
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestNewAuthServiceValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
	emitter := events.NewInMemoryEventEmitter(newDiscardLogger())

	tests := []struct {
		name string
		fn   func()
	}{
		{
			name: "nil user store",
			fn: func() {
				NewAuthService(nil, sessionStore, verifier, emitter, db, testAuthConfig(), nil)
			},
		},
		{
			name: "nil session store",
			fn: func() {
				NewAuthService(userStore, nil, verifier, emitter, db, testAuthConfig(), nil)
			},
		},
		{
			name: "nil verifier",
			fn: func() {
				NewAuthService(userStore, sessionStore, nil, emitter, db, testAuthConfig(), nil)
			},
		},
		{
			name: "nil emitter",
			fn: func() {
				NewAuthService(userStore, sessionStore, verifier, nil, db, testAuthConfig(), nil)
			},
		},
		{
			name: "nil db",
			fn: func() {
				NewAuthService(userStore, sessionStore, verifier, emitter, nil, testAuthConfig(), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}

	t.Run("nil logger falls back to default", func(t *testing.T) {
		svc := NewAuthService(userStore, sessionStore, verifier, emitter, db, testAuthConfig(), nil)
		assert.NotNil(t, svc)
	})
}
