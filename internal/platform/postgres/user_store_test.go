package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testLogger keeps store log output out of test results.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var userColumns = []string{"id", "username", "email", "hashed_password", "created_at"}

func TestNewPostgresUserStore(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	t.Run("valid_cost_is_kept", func(t *testing.T) {
		s := NewPostgresUserStore(db, 12, testLogger())
		assert.NotNil(t, s)
		assert.Equal(t, 12, s.bcryptCost)
	})

	t.Run("cost_out_of_range_falls_back_to_default", func(t *testing.T) {
		for _, cost := range []int{0, 3, 32, -1} {
			s := NewPostgresUserStore(db, cost, testLogger())
			assert.Equal(t, bcrypt.DefaultCost, s.bcryptCost)
		}
	})

	t.Run("nil_logger_uses_default", func(t *testing.T) {
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)
		assert.NotNil(t, s.logger)
	})

	t.Run("nil_db_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewPostgresUserStore(nil, bcrypt.MinCost, testLogger())
		})
	})
}

func TestPostgresUserStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes_password_and_inserts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		user, err := domain.NewUser("alice", "alice@example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, "alice", "alice@example.com", sqlmock.AnyArg(), user.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = s.Create(ctx, user)
		require.NoError(t, err)

		// The plaintext never survives Create; only the hash does.
		assert.Empty(t, user.Password)
		require.NotEmpty(t, user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(user.HashedPassword), []byte("correct horse battery")))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate_username", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		user, err := domain.NewUser("alice", "other@example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{
				Code:           uniqueViolationCode,
				ConstraintName: usernameUniqueConstraint,
			})

		err = s.Create(ctx, user)
		assert.ErrorIs(t, err, store.ErrUsernameExists)
		assert.NotErrorIs(t, err, store.ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		user, err := domain.NewUser("bob", "alice@example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{
				Code:           uniqueViolationCode,
				ConstraintName: emailUniqueConstraint,
			})

		err = s.Create(ctx, user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.NotErrorIs(t, err, store.ErrUsernameExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique_violation_on_unknown_constraint", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		user, err := domain.NewUser("carol", "carol@example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{
				Code:           uniqueViolationCode,
				ConstraintName: "users_pkey",
			})

		err = s.Create(ctx, user)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_user_never_reaches_database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		user := &domain.User{
			ID:        uuid.New(),
			Username:  "   ",
			Email:     "dave@example.com",
			Password:  "correct horse battery",
			CreatedAt: time.Now().UTC(),
		}

		err = s.Create(ctx, user)
		assert.ErrorIs(t, err, domain.ErrEmptyUsername)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_password_rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		user := &domain.User{
			ID:             uuid.New(),
			Username:       "erin",
			Email:          "erin@example.com",
			HashedPassword: "$2a$04$notarealhashbutnonempty",
			CreatedAt:      time.Now().UTC(),
		}

		err = s.Create(ctx, user)
		assert.ErrorIs(t, err, domain.ErrEmptyPassword)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	ctx := context.Background()

	newStoredUser := func() *domain.User {
		return &domain.User{
			ID:             uuid.New(),
			Username:       "alice",
			Email:          "alice@example.com",
			HashedPassword: "$2a$04$somestoredhash",
			CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		}
	}

	t.Run("by_id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())
		want := newStoredUser()

		mock.ExpectQuery("SELECT id, username, email, hashed_password, created_at FROM users WHERE id").
			WithArgs(want.ID).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(want.ID.String(), want.Username, want.Email, want.HashedPassword, want.CreatedAt))

		got, err := s.GetByID(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Username, got.Username)
		assert.Equal(t, want.Email, got.Email)
		assert.Equal(t, want.HashedPassword, got.HashedPassword)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by_username", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())
		want := newStoredUser()

		mock.ExpectQuery("SELECT id, username, email, hashed_password, created_at FROM users WHERE username").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(want.ID.String(), want.Username, want.Email, want.HashedPassword, want.CreatedAt))

		got, err := s.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by_email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())
		want := newStoredUser()

		mock.ExpectQuery("SELECT id, username, email, hashed_password, created_at FROM users WHERE email").
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(want.ID.String(), want.Username, want.Email, want.HashedPassword, want.CreatedAt))

		got, err := s.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, want.Email, got.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_user_maps_to_not_found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		mock.ExpectQuery("SELECT id, username, email, hashed_password, created_at FROM users WHERE username").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(userColumns))

		got, err := s.GetByUsername(ctx, "nobody")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connection_failure_maps_to_transient", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

		mock.ExpectQuery("SELECT id, username, email, hashed_password, created_at FROM users WHERE username").
			WithArgs("alice").
			WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

		got, err := s.GetByUsername(ctx, "alice")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, store.ErrTransient)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresUserStore(db, 12, testLogger())

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	txStore, ok := s.WithTx(tx).(*PostgresUserStore)
	require.True(t, ok)

	// The transactional copy keeps the cost but swaps the connection.
	assert.Equal(t, s.bcryptCost, txStore.bcryptCost)
	assert.NotEqual(t, s.db, txStore.db)

	var iface store.UserStore = txStore
	assert.NotNil(t, iface)

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_CreateMapsUnexpectedErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresUserStore(db, bcrypt.MinCost, testLogger())

	user, err := domain.NewUser("frank", "frank@example.com", "correct horse battery")
	require.NoError(t, err)

	dbErr := errors.New("disk full")
	mock.ExpectExec("INSERT INTO users").WillReturnError(dbErr)

	err = s.Create(context.Background(), user)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
