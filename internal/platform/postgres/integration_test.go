package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/service/auth"
	"github.com/phrazzld/docket-api/internal/store"
	"github.com/phrazzld/docket-api/internal/testdb"
)

// These tests run against a real database; testdb.Open skips them when no
// DATABASE_URL is configured. Each scenario runs inside a rolled-back
// transaction, and constraint-violation checks come last within their
// transaction because a violation aborts everything after it.

func createTestUser(t *testing.T, tx *sql.Tx, username, email string) *domain.User {
	t.Helper()

	users := NewPostgresUserStore(tx, bcrypt.MinCost, testLogger())
	user, err := domain.NewUser(username, email, "correct horse battery")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestUserStoreIntegration(t *testing.T) {
	db := testdb.Open(t)

	t.Run("create and fetch", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			users := NewPostgresUserStore(tx, bcrypt.MinCost, testLogger())

			user, err := domain.NewUser("dana", "dana@example.com", "correct horse")
			require.NoError(t, err)
			require.NoError(t, users.Create(ctx, user))

			// Create hashes the password and drops the plaintext.
			assert.Empty(t, user.Password)
			require.NoError(t,
				bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse")))

			got, err := users.GetByUsername(ctx, "dana")
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, "dana@example.com", got.Email)
			assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, time.Second)

			byEmail, err := users.GetByEmail(ctx, "dana@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			byID, err := users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "dana", byID.Username)

			// Username lookups are case-sensitive.
			_, err = users.GetByUsername(ctx, "Dana")
			assert.ErrorIs(t, err, store.ErrUserNotFound)
		})
	})

	t.Run("duplicate username", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			users := NewPostgresUserStore(tx, bcrypt.MinCost, testLogger())
			createTestUser(t, tx, "dana", "dana@example.com")

			dup, err := domain.NewUser("dana", "other@example.com", "some password")
			require.NoError(t, err)
			assert.ErrorIs(t, users.Create(context.Background(), dup), store.ErrUsernameExists)
		})
	})

	t.Run("duplicate email", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			users := NewPostgresUserStore(tx, bcrypt.MinCost, testLogger())
			createTestUser(t, tx, "dana", "dana@example.com")

			dup, err := domain.NewUser("notdana", "dana@example.com", "some password")
			require.NoError(t, err)
			assert.ErrorIs(t, users.Create(context.Background(), dup), store.ErrEmailExists)
		})
	})
}

func TestSessionStoreIntegration(t *testing.T) {
	db := testdb.Open(t)

	t.Run("issue resolve revoke", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			sessions := NewPostgresSessionStore(tx, testLogger())
			user := createTestUser(t, tx, "dana", "dana@example.com")

			token, err := auth.NewSessionToken()
			require.NoError(t, err)

			session, err := domain.NewSession(user.ID, token, 24*time.Hour)
			require.NoError(t, err)
			require.NoError(t, sessions.Create(ctx, session))

			got, err := sessions.GetByToken(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.UserID)
			assert.False(t, got.Revoked)
			assert.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Second)

			require.NoError(t, sessions.Revoke(ctx, token))

			got, err = sessions.GetByToken(ctx, token)
			require.NoError(t, err)
			assert.True(t, got.Revoked)

			// Revoking again is a no-op, not an error.
			require.NoError(t, sessions.Revoke(ctx, token))
		})
	})

	t.Run("unknown token", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			sessions := NewPostgresSessionStore(tx, testLogger())

			_, err := sessions.GetByToken(context.Background(), "deadbeef")
			assert.ErrorIs(t, err, store.ErrSessionNotFound)
			assert.ErrorIs(t, sessions.Revoke(context.Background(), "deadbeef"), store.ErrSessionNotFound)
		})
	})

	t.Run("delete expired sweeps dead sessions", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			sessions := NewPostgresSessionStore(tx, testLogger())
			user := createTestUser(t, tx, "dana", "dana@example.com")

			now := time.Now().UTC()
			makeSession := func(expiresAt time.Time, revoked bool) string {
				token, err := auth.NewSessionToken()
				require.NoError(t, err)
				session := &domain.Session{
					Token:     token,
					UserID:    user.ID,
					IssuedAt:  expiresAt.Add(-24 * time.Hour),
					ExpiresAt: expiresAt,
					Revoked:   revoked,
				}
				require.NoError(t, sessions.Create(ctx, session))
				return token
			}

			expired := makeSession(now.Add(-time.Hour), false)
			revoked := makeSession(now.Add(time.Hour), true)
			live := makeSession(now.Add(time.Hour), false)

			count, err := sessions.DeleteExpired(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			_, err = sessions.GetByToken(ctx, expired)
			assert.ErrorIs(t, err, store.ErrSessionNotFound)
			_, err = sessions.GetByToken(ctx, revoked)
			assert.ErrorIs(t, err, store.ErrSessionNotFound)

			got, err := sessions.GetByToken(ctx, live)
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.UserID)
		})
	})
}

func TestTaskStoreIntegration(t *testing.T) {
	db := testdb.Open(t)

	t.Run("crud cycle", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			tasks := NewPostgresTaskStore(tx, testLogger())
			user := createTestUser(t, tx, "dana", "dana@example.com")

			due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
			first, err := domain.NewTask(user.ID, "ship the release", "cut and tag", &due, "14:30", domain.CategoryDevelopment)
			require.NoError(t, err)
			second, err := domain.NewTask(user.ID, "book the venue", "", nil, "", "")
			require.NoError(t, err)

			// Pin creation times so the listing order is deterministic.
			base := time.Now().UTC().Truncate(time.Second)
			first.CreatedAt = base.Add(-time.Minute)
			second.CreatedAt = base

			require.NoError(t, tasks.Create(ctx, first))
			require.NoError(t, tasks.Create(ctx, second))

			list, err := tasks.ListByUser(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, list, 2)

			// Newest first.
			assert.Equal(t, second.ID, list[0].ID)
			assert.Equal(t, first.ID, list[1].ID)
			assert.Equal(t, domain.CategoryGeneral, list[0].Category)

			got := list[1]
			assert.Equal(t, "ship the release", got.Title)
			assert.Equal(t, "14:30", got.DueTime)
			require.NotNil(t, got.DueDate)
			assert.Equal(t, due.Year(), got.DueDate.Year())
			assert.Equal(t, due.Month(), got.DueDate.Month())
			assert.Equal(t, due.Day(), got.DueDate.Day())
			assert.Nil(t, list[0].DueDate)

			got.Title = "ship the release candidate"
			got.Completed = true
			got.UpdatedAt = time.Now().UTC()
			require.NoError(t, tasks.Update(ctx, got))

			updated, err := tasks.GetByID(ctx, user.ID, got.ID)
			require.NoError(t, err)
			assert.Equal(t, "ship the release candidate", updated.Title)
			assert.True(t, updated.Completed)

			require.NoError(t, tasks.Delete(ctx, user.ID, got.ID))
			_, err = tasks.GetByID(ctx, user.ID, got.ID)
			assert.ErrorIs(t, err, store.ErrTaskNotFound)
			assert.ErrorIs(t, tasks.Delete(ctx, user.ID, got.ID), store.ErrTaskNotFound)
		})
	})

	t.Run("tasks are invisible to other users", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx := context.Background()
			tasks := NewPostgresTaskStore(tx, testLogger())
			owner := createTestUser(t, tx, "dana", "dana@example.com")
			other := createTestUser(t, tx, "eve", "eve@example.com")

			task, err := domain.NewTask(owner.ID, "private task", "", nil, "", "")
			require.NoError(t, err)
			require.NoError(t, tasks.Create(ctx, task))

			_, err = tasks.GetByID(ctx, other.ID, task.ID)
			assert.ErrorIs(t, err, store.ErrTaskNotFound)
			assert.ErrorIs(t, tasks.Delete(ctx, other.ID, task.ID), store.ErrTaskNotFound)

			list, err := tasks.ListByUser(ctx, other.ID)
			require.NoError(t, err)
			assert.Empty(t, list)

			// The owner still sees it.
			_, err = tasks.GetByID(ctx, owner.ID, task.ID)
			require.NoError(t, err)
		})
	})

	t.Run("update of a missing task", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			tasks := NewPostgresTaskStore(tx, testLogger())
			user := createTestUser(t, tx, "dana", "dana@example.com")

			ghost := &domain.Task{
				ID:        uuid.New(),
				UserID:    user.ID,
				Title:     "never stored",
				Category:  domain.CategoryGeneral,
				CreatedAt: time.Now().UTC(),
				UpdatedAt: time.Now().UTC(),
			}
			assert.ErrorIs(t, tasks.Update(context.Background(), ghost), store.ErrTaskNotFound)
		})
	})
}
