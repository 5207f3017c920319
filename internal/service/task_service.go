package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/events"
	"github.com/phrazzld/docket-api/internal/platform/logger"
	"github.com/phrazzld/docket-api/internal/store"
)

// CreateTaskParams carries the caller-supplied fields of a new task.
// Everything except Title is optional; an empty Category defaults to
// general in the domain layer.
type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	DueTime     string
	Category    domain.Category
}

// TaskUpdate carries a partial task update. Nil fields keep their prior
// values. The due date is the one field where "absent" and "remove" both
// need expressing: ClearDueDate removes it, a non-nil DueDate replaces it,
// and nil with ClearDueDate false leaves it alone. DueTime clears with a
// pointer to the empty string.
type TaskUpdate struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	DueTime      *string
	Category     *domain.Category
	Completed    *bool
}

// TaskService provides task-related operations. Every operation is scoped
// to the owning user; tasks belonging to other users are reported as not
// found rather than forbidden, so task IDs cannot be probed.
type TaskService interface {
	// ListTasks retrieves all tasks owned by userID, newest first.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// CreateTask creates a new task owned by userID.
	CreateTask(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// UpdateTask applies a partial update to the task with the given ID.
	// Returns store.ErrTaskNotFound if the task does not exist or is owned
	// by a different user.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// DeleteTask permanently removes the task with the given ID.
	// Returns store.ErrTaskNotFound if the task does not exist or is owned
	// by a different user.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	db        *sql.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) TaskService {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskServiceImpl{
		taskStore: taskStore,
		emitter:   emitter,
		db:        db,
		logger:    logger.With("component", "task_service"),
	}
}

// ListTasks retrieves all tasks owned by userID, newest first.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskStore.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list tasks",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	log.Debug("listed tasks",
		"user_id", userID,
		"task_count", len(tasks))

	return tasks, nil
}

// CreateTask creates a new task owned by userID.
// Uses a transaction to ensure atomicity of the operation.
func (s *TaskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(
		userID,
		params.Title,
		params.Description,
		params.DueDate,
		params.DueTime,
		params.Category,
	)
	if err != nil {
		log.Debug("task rejected by validation",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)
		return txStore.Create(ctx, task)
	})

	if err != nil {
		log.Error("failed to save task",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.emit(ctx, events.EventTaskCreated, events.TaskEventPayload{
		TaskID:   task.ID,
		UserID:   userID,
		Category: string(task.Category),
	})

	log.Info("task created",
		"task_id", task.ID,
		"user_id", userID,
		"category", task.Category)

	return task, nil
}

// UpdateTask applies a partial update to the task with the given ID.
// Following the pattern of getting the complete task first, merging the
// changed fields, and passing the full object back to the store.
// Uses a transaction to ensure atomicity of the operation.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	update TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	var completedNow bool

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}

		wasCompleted := task.Completed
		applyUpdate(task, update)
		task.UpdatedAt = time.Now().UTC()

		// Completing a task keeps its due date and time; overdue simply
		// derives false once completed.
		if err := task.Validate(); err != nil {
			return err
		}

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		completedNow = !wasCompleted && task.Completed
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			log.Debug("update for missing or foreign task",
				"task_id", taskID,
				"user_id", userID)
		case errors.Is(err, domain.ErrValidation):
			log.Debug("update rejected by validation",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		default:
			log.Error("failed to update task",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if completedNow {
		s.emit(ctx, events.EventTaskCompleted, events.TaskEventPayload{
			TaskID: updated.ID,
			UserID: userID,
		})
	}

	log.Info("task updated",
		"task_id", updated.ID,
		"user_id", userID)

	return updated, nil
}

// DeleteTask permanently removes the task with the given ID.
// Uses a transaction to ensure atomicity of the operation.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)
		return txStore.Delete(ctx, userID, taskID)
	})

	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("delete for missing or foreign task",
				"task_id", taskID,
				"user_id", userID)
		} else {
			log.Error("failed to delete task",
				"error", err,
				"task_id", taskID,
				"user_id", userID)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.emit(ctx, events.EventTaskDeleted, events.TaskEventPayload{
		TaskID: taskID,
		UserID: userID,
	})

	log.Info("task deleted",
		"task_id", taskID,
		"user_id", userID)

	return nil
}

// applyUpdate merges the set fields of a partial update onto the task.
func applyUpdate(task *domain.Task, update TaskUpdate) {
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.ClearDueDate {
		task.DueDate = nil
	} else if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.DueTime != nil {
		task.DueTime = *update.DueTime
	}
	if update.Category != nil {
		task.Category = *update.Category
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
}

// emit publishes a lifecycle event. Event delivery is best effort: a
// handler failure is logged and never surfaces to the caller, because the
// underlying operation has already committed.
func (s *TaskServiceImpl) emit(ctx context.Context, eventType string, payload interface{}) {
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
