package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	// ErrTaskOwnerIDEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerIDEmpty = fmt.Errorf("%w: task owner ID cannot be empty", ErrValidation)

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
)

// Task represents a single unit of work owned by a user. The engine treats
// a Task as an immutable snapshot per operation; mutation happens through
// the store layer.
//
// A task is a recurring template iff it carries a RecurrenceRule and no
// ParentRecurringTaskID; it is a recurring instance iff ParentRecurringTaskID
// is set.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	DashboardID *uuid.UUID `json:"dashboard_id,omitempty"`
	BusinessID  *uuid.UUID `json:"business_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Category    string     `json:"category,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	// TimeEstimate and ActualTimeSpent are in minutes.
	TimeEstimate    *int `json:"time_estimate,omitempty"`
	ActualTimeSpent *int `json:"actual_time_spent,omitempty"`

	ProjectID  *uuid.UUID `json:"project_id,omitempty"`
	Project    *Project   `json:"project,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`

	// DependsOn holds ids of tasks this task is blocked by; Blocks holds the
	// inverse edges. Both are derived from the dependency edge set by the
	// store layer.
	DependsOn []uuid.UUID `json:"depends_on,omitempty"`
	Blocks    []uuid.UUID `json:"blocks,omitempty"`

	RecurrenceRule        string     `json:"recurrence_rule,omitempty"`
	ParentRecurringTaskID *uuid.UUID `json:"parent_recurring_task_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// NewTask creates a new Task with the given owner and title, generating a
// fresh UUID and timestamps. Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Priority:  PriorityMedium,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
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
		return ErrTaskIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if t.TimeEstimate != nil && *t.TimeEstimate < 0 {
		return ErrInvalidTimeEstimate
	}

	return nil
}

// IsDone reports whether the task has reached its terminal status.
func (t *Task) IsDone() bool {
	return t.Status.IsTerminal()
}

// IsRecurringTemplate reports whether the task is the generator of
// recurring instances.
func (t *Task) IsRecurringTemplate() bool {
	return t.RecurrenceRule != "" && t.ParentRecurringTaskID == nil
}

// IsRecurringInstance reports whether the task was generated from a
// recurring template.
func (t *Task) IsRecurringInstance() bool {
	return t.ParentRecurringTaskID != nil
}

// CloneForOccurrence produces a recurrence instance from a template: a new
// task sharing the template's fields, due at the given occurrence time, with
// ParentRecurringTaskID pointing back at the template. End-time fields carry
// over unchanged. The clone carries no recurrence rule of its own.
func (t *Task) CloneForOccurrence(due time.Time) *Task {
	now := time.Now().UTC()
	parentID := t.ID
	dueCopy := due

	clone := &Task{
		ID:                    uuid.New(),
		OwnerID:               t.OwnerID,
		DashboardID:           t.DashboardID,
		BusinessID:            t.BusinessID,
		Title:                 t.Title,
		Description:           t.Description,
		Priority:              t.Priority,
		Status:                StatusPending,
		Category:              t.Category,
		DueDate:               &dueCopy,
		EndDate:               t.EndDate,
		TimeEstimate:          t.TimeEstimate,
		ProjectID:             t.ProjectID,
		AssigneeID:            t.AssigneeID,
		ParentRecurringTaskID: &parentID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	return clone
}
