package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
)

// TaskFilter narrows the result set of ListByOwner. Nil pointer fields are
// ignored. ExcludeDone drops tasks in a terminal status regardless of the
// Status field.
type TaskFilter struct {
	DashboardID *uuid.UUID
	BusinessID  *uuid.UUID
	ProjectID   *uuid.UUID
	AssigneeID  *uuid.UUID
	Status      *domain.TaskStatus
	Priority    *domain.Priority
	DueBefore   *time.Time
	DueAfter    *time.Time
	ExcludeDone bool
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors if the task data is invalid.
	// Returns ErrDuplicate if a task with the same ID already exists.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist or is soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByOwner retrieves the owner's tasks matching the filter,
	// ordered by creation time. Soft-deleted tasks are excluded.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// ListByIDs retrieves the tasks with the given IDs. Missing IDs are
	// silently skipped; the result may be shorter than the input.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Task, error)

	// Update modifies an existing task. The UpdatedAt timestamp is set by
	// the store. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdatePriority changes only the task's priority level.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdatePriority(ctx context.Context, id uuid.UUID, priority domain.Priority) error

	// Delete soft-deletes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateInstances saves multiple recurring-task instances.
	// IMPORTANT: run this within a transaction via WithTx and
	// store.RunInTransaction so the batch is atomic.
	CreateInstances(ctx context.Context, instances []*domain.Task) error

	// ListInstances retrieves the instances generated from a recurring
	// template, ordered by due date.
	ListInstances(ctx context.Context, templateID uuid.UUID) ([]*domain.Task, error)

	// DeleteFutureInstances soft-deletes the template's not-yet-done
	// instances due after the given time. Returns the number removed.
	DeleteFutureInstances(ctx context.Context, templateID uuid.UUID, after time.Time) (int, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service) through store.RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
