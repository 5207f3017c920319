package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/docket-api/internal/domain"
)

// TaskStore defines the interface for task data persistence. Every
// operation except Create is scoped by owner: a task is only visible to
// the user it belongs to, and lookups by non-owners report ErrTaskNotFound
// rather than revealing that the ID exists.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the task with the given ID owned by userID.
	// Returns ErrTaskNotFound if the task does not exist or belongs to a
	// different user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// ListByUser retrieves all tasks owned by userID, newest first
	// (created_at descending). Returns an empty slice, not nil, when the
	// user has no tasks.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update saves changes to an existing task. The caller provides the
	// complete task; partial-field merging happens in the service layer.
	// Returns ErrTaskNotFound if the task does not exist or belongs to a
	// different user. Returns validation errors if the task data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// Delete permanently removes the task with the given ID owned by
	// userID. Returns ErrTaskNotFound if the task does not exist or
	// belongs to a different user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
