package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/service"
)

// dueDateLayout is the wire format for task due dates.
const dueDateLayout = "2006-01-02"

// RegisterRequest defines the payload for the registration endpoint.
// Password length policy is enforced by the auth service, not here.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account. The password hash never
// appears in any response.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the session token and the account's public
// identity fields.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// VerifyResponse reports a resolvable session token.
type VerifyResponse struct {
	Valid  bool      `json:"valid"`
	UserID uuid.UUID `json:"user_id"`
}

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest defines the payload for task creation. Validation is
// the domain's job: empty titles and unknown categories are rejected
// there, so the DTO carries no tags.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	DueTime     string `json:"due_time"`
	Category    string `json:"category"`
}

func (req CreateTaskRequest) toParams() (service.CreateTaskParams, error) {
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return service.CreateTaskParams{}, err
	}

	return service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		DueTime:     req.DueTime,
		Category:    domain.Category(req.Category),
	}, nil
}

// UpdateTaskRequest defines the payload for partial task updates. Absent
// fields keep their current values. An explicit empty string clears
// due_date or due_time; title and category cannot be cleared.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	DueTime     *string `json:"due_time"`
	Category    *string `json:"category"`
	Completed   *bool   `json:"completed"`
}

func (req UpdateTaskRequest) toUpdate() (service.TaskUpdate, error) {
	update := service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueTime:     req.DueTime,
		Completed:   req.Completed,
	}

	if req.Category != nil {
		category := domain.Category(*req.Category)
		update.Category = &category
	}

	if req.DueDate != nil {
		if *req.DueDate == "" {
			update.ClearDueDate = true
		} else {
			dueDate, err := parseDueDate(*req.DueDate)
			if err != nil {
				return service.TaskUpdate{}, err
			}
			update.DueDate = dueDate
		}
	}

	return update, nil
}

// TaskResponse is the wire representation of a task. DueDate and DueTime
// are null when unset; Overdue is derived per render and never stored.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date"`
	DueTime     *string   `json:"due_time"`
	Category    string    `json:"category"`
	Completed   bool      `json:"completed"`
	Overdue     bool      `json:"overdue"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// taskToResponse converts a domain task, deriving the overdue flag
// against the given instant.
func taskToResponse(task *domain.Task, now time.Time) TaskResponse {
	var dueDate *string
	if task.DueDate != nil {
		formatted := task.DueDate.Format(dueDateLayout)
		dueDate = &formatted
	}

	var dueTime *string
	if task.DueTime != "" {
		value := task.DueTime
		dueTime = &value
	}

	return TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     dueDate,
		DueTime:     dueTime,
		Category:    string(task.Category),
		Completed:   task.Completed,
		Overdue:     task.OverdueAt(now),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// parseDueDate parses a YYYY-MM-DD due date; "" means no due date.
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: due date must be in YYYY-MM-DD format", domain.ErrValidation)
	}
	return &parsed, nil
}
