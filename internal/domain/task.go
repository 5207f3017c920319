package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category labels a task for the client's filter views. The set is closed:
// unknown categories are rejected, never normalized.
type Category string

// Possible task categories
const (
	CategoryGeneral     Category = "general"
	CategoryMarketing   Category = "marketing"
	CategoryMeeting     Category = "meeting"
	CategoryProduction  Category = "production"
	CategoryDesign      Category = "design"
	CategoryDevelopment Category = "development"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID     = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskUserID = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle  = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrInvalidCategory = fmt.Errorf("%w: invalid task category", ErrValidation)
	ErrInvalidDueTime  = fmt.Errorf("%w: due time must be in HH:MM format", ErrValidation)
)

// DueTimeLayout is the wire and storage format for a task's optional
// time-of-day.
const DueTimeLayout = "15:04"

// Task is a scheduled item owned by exactly one user. DueDate carries only
// a calendar date (the time-of-day portion is ignored); DueTime is a
// display-level "HH:MM" string and never participates in overdue
// derivation. Overdue itself is not stored; see OverdueAt.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	DueTime     string     `json:"due_time,omitempty"`
	Category    Category   `json:"category"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by userID. An empty category defaults to
// CategoryGeneral; completed always starts false. Returns an error if
// validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	dueDate *time.Time,
	dueTime string,
	category Category,
) (*Task, error) {
	if category == "" {
		category = CategoryGeneral
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		DueTime:     dueTime,
		Category:    category,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if !IsValidCategory(t.Category) {
		return ErrInvalidCategory
	}

	if t.DueTime != "" {
		if _, err := time.Parse(DueTimeLayout, t.DueTime); err != nil {
			return ErrInvalidDueTime
		}
	}

	return nil
}

// OverdueAt derives the overdue flag at the given instant: true iff a due
// date is set, the task is not completed, and the due date's calendar day
// falls strictly before now's calendar day in now's location. The
// comparison is date-only; DueTime never factors in.
func (t *Task) OverdueAt(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}

	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// IsValidCategory checks if the given category is one of the closed set.
func IsValidCategory(category Category) bool {
	switch category {
	case CategoryGeneral, CategoryMarketing, CategoryMeeting,
		CategoryProduction, CategoryDesign, CategoryDevelopment:
		return true
	default:
		return false
	}
}
