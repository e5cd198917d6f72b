package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
)

// DependencyStore defines the interface for dependency edge persistence.
// An edge (TaskID, DependsOnTaskID) means TaskID cannot start until
// DependsOnTaskID is done.
type DependencyStore interface {
	// Create saves a new dependency edge.
	// Returns ErrDependencyExists if the edge already exists and
	// ErrInvalidEntity if either endpoint does not exist.
	Create(ctx context.Context, edge *domain.DependencyEdge) error

	// Delete removes the exact edge (taskID, dependsOnTaskID).
	// Returns ErrDependencyNotFound if the edge does not exist.
	Delete(ctx context.Context, taskID, dependsOnTaskID uuid.UUID) error

	// Exists reports whether the exact edge (taskID, dependsOnTaskID) exists.
	Exists(ctx context.Context, taskID, dependsOnTaskID uuid.UUID) (bool, error)

	// ListDependsOn returns the IDs of the tasks the given task depends on.
	ListDependsOn(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)

	// ListBlocks returns the IDs of the tasks that depend on the given task.
	ListBlocks(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns a new DependencyStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service) through store.RunInTransaction.
	WithTx(tx *sql.Tx) DependencyStore
}
