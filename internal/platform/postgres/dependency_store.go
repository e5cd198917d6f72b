package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/store"
)

// PostgresDependencyStore implements the store.DependencyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDependencyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDependencyStore creates a new PostgreSQL implementation of the
// DependencyStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDependencyStore(db store.DBTX, logger *slog.Logger) *PostgresDependencyStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDependencyStore{
		db:     db,
		logger: logger.With(slog.String("component", "dependency_store")),
	}
}

// Ensure PostgresDependencyStore implements store.DependencyStore interface
var _ store.DependencyStore = (*PostgresDependencyStore)(nil)

// WithTx implements store.DependencyStore.WithTx
func (s *PostgresDependencyStore) WithTx(tx *sql.Tx) store.DependencyStore {
	return &PostgresDependencyStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.DependencyStore.Create
// Returns store.ErrDependencyExists if the edge already exists,
// store.ErrTaskNotFound if either endpoint does not exist, and
// store.ErrInvalidEntity if the row violates a table constraint.
func (s *PostgresDependencyStore) Create(ctx context.Context, edge *domain.DependencyEdge) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := edge.Validate(); err != nil {
		log.Warn("dependency validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", edge.TaskID.String()))
		return err
	}

	query := `
		INSERT INTO task_dependencies (task_id, depends_on_task_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, edge.TaskID, edge.DependsOnTaskID, edge.CreatedAt)
	if err != nil {
		log.Error("failed to create dependency",
			slog.String("error", err.Error()),
			slog.String("task_id", edge.TaskID.String()),
			slog.String("depends_on_task_id", edge.DependsOnTaskID.String()))
		return mapEdgeInsertError(edge, err)
	}

	log.Debug("dependency created",
		slog.String("task_id", edge.TaskID.String()),
		slog.String("depends_on_task_id", edge.DependsOnTaskID.String()))
	return nil
}

// mapEdgeInsertError translates constraint violations on the edge table into
// the store sentinels callers branch on. The unique constraint doubles as
// the concurrent-duplicate backstop, and a foreign key violation means an
// endpoint task is gone.
func mapEdgeInsertError(edge *domain.DependencyEdge, err error) error {
	switch {
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %s -> %s",
			store.ErrDependencyExists, edge.TaskID, edge.DependsOnTaskID)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: dependency endpoint", store.ErrTaskNotFound)
	case IsCheckConstraintViolation(err):
		return fmt.Errorf("%w: dependency edge", store.ErrInvalidEntity)
	default:
		return MapError(err)
	}
}

// Delete implements store.DependencyStore.Delete
// Returns store.ErrDependencyNotFound if the exact edge does not exist.
func (s *PostgresDependencyStore) Delete(ctx context.Context, taskID, dependsOnTaskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM task_dependencies
		WHERE task_id = $1 AND depends_on_task_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, taskID, dependsOnTaskID)
	if err != nil {
		log.Error("failed to delete dependency",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("depends_on_task_id", dependsOnTaskID.String()))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}

	if err := CheckRowsAffected(result, "dependency"); err != nil {
		return store.ErrDependencyNotFound
	}
	return nil
}

// Exists implements store.DependencyStore.Exists
func (s *PostgresDependencyStore) Exists(
	ctx context.Context,
	taskID, dependsOnTaskID uuid.UUID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM task_dependencies
			WHERE task_id = $1 AND depends_on_task_id = $2
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, taskID, dependsOnTaskID).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListDependsOn implements store.DependencyStore.ListDependsOn
func (s *PostgresDependencyStore) ListDependsOn(
	ctx context.Context,
	taskID uuid.UUID,
) ([]uuid.UUID, error) {
	query := `
		SELECT depends_on_task_id FROM task_dependencies
		WHERE task_id = $1
		ORDER BY created_at ASC
	`
	return s.listEdgeIDs(ctx, query, taskID)
}

// ListBlocks implements store.DependencyStore.ListBlocks
func (s *PostgresDependencyStore) ListBlocks(
	ctx context.Context,
	taskID uuid.UUID,
) ([]uuid.UUID, error) {
	query := `
		SELECT task_id FROM task_dependencies
		WHERE depends_on_task_id = $1
		ORDER BY created_at ASC
	`
	return s.listEdgeIDs(ctx, query, taskID)
}

// listEdgeIDs runs a single-column UUID query and drains the result.
func (s *PostgresDependencyStore) listEdgeIDs(
	ctx context.Context,
	query string,
	taskID uuid.UUID,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list dependency edges",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("dependency", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan dependency row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dependency rows: %w", err)
	}
	return ids, nil
}
