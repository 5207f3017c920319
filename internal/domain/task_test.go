package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestNewTask(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	task, err := NewTask(userID, "Write report", "quarterly numbers", date(2024, 1, 1), "09:30", CategoryMarketing)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}

	if task.Completed {
		t.Error("Expected new task to start incomplete")
	}

	if task.Category != CategoryMarketing {
		t.Errorf("Expected category %s, got %s", CategoryMarketing, task.Category)
	}

	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Empty category defaults to general.
	task, err = NewTask(userID, "Pick up groceries", "", nil, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Category != CategoryGeneral {
		t.Errorf("Expected default category %s, got %s", CategoryGeneral, task.Category)
	}

	// Test missing owner
	_, err = NewTask(uuid.Nil, "Write report", "", nil, "", "")
	if !errors.Is(err, ErrEmptyTaskUserID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskUserID, err)
	}

	// Test empty and whitespace-only titles
	_, err = NewTask(userID, "", "", nil, "", "")
	if !errors.Is(err, ErrEmptyTaskTitle) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}

	_, err = NewTask(userID, "   \t ", "", nil, "", "")
	if !errors.Is(err, ErrEmptyTaskTitle) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskTitle, err)
	}

	// Test unknown category is rejected, not normalized
	_, err = NewTask(userID, "Write report", "", nil, "", "chores")
	if !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("Expected error %v, got %v", ErrInvalidCategory, err)
	}

	// Test malformed due time
	_, err = NewTask(userID, "Write report", "", nil, "9:99", "")
	if !errors.Is(err, ErrInvalidDueTime) {
		t.Errorf("Expected error %v, got %v", ErrInvalidDueTime, err)
	}
}

func TestTaskOverdueAt(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		dueDate   *time.Time
		completed bool
		want      bool
	}{
		{"no due date", nil, false, false},
		{"due yesterday", date(2024, 5, 31), false, true},
		{"due long ago", date(2024, 1, 1), false, true},
		{"due today", date(2024, 6, 1), false, false},
		{"due tomorrow", date(2024, 6, 2), false, false},
		{"due yesterday but completed", date(2024, 5, 31), true, false},
		{"completed without due date", nil, true, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := Task{
				ID:        uuid.New(),
				UserID:    uuid.New(),
				Title:     "Write report",
				DueDate:   tc.dueDate,
				Category:  CategoryGeneral,
				Completed: tc.completed,
			}

			if got := task.OverdueAt(now); got != tc.want {
				t.Errorf("OverdueAt = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTaskOverdueIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()
	// Due date stored with a late time-of-day still counts as its calendar
	// day, and the due time string never factors in.
	due := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	task := Task{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Title:    "Write report",
		DueDate:  &due,
		DueTime:  "23:59",
		Category: CategoryGeneral,
	}

	morningAfter := time.Date(2024, 6, 1, 0, 0, 1, 0, time.UTC)
	if !task.OverdueAt(morningAfter) {
		t.Error("Expected task due yesterday to be overdue just after midnight")
	}
}

func TestIsValidCategory(t *testing.T) {
	t.Parallel()
	valid := []Category{
		CategoryGeneral, CategoryMarketing, CategoryMeeting,
		CategoryProduction, CategoryDesign, CategoryDevelopment,
	}

	for _, c := range valid {
		if !IsValidCategory(c) {
			t.Errorf("Expected category %s to be valid", c)
		}
	}

	invalid := []Category{"", "chores", "General", "MARKETING"}
	for _, c := range invalid {
		if IsValidCategory(c) {
			t.Errorf("Expected category %q to be invalid", c)
		}
	}
}
