package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/graph"
	"github.com/rowanvale/taskengine/internal/platform/logger"
	"github.com/rowanvale/taskengine/internal/store"
)

// DependencyService manages dependency edges between tasks. Every mutation
// runs through the graph guard so the edge set stays acyclic.
type DependencyService struct {
	db     *sql.DB
	tasks  store.TaskStore
	deps   store.DependencyStore
	logger *slog.Logger
}

// NewDependencyService creates a new DependencyService.
func NewDependencyService(
	db *sql.DB,
	tasks store.TaskStore,
	deps store.DependencyStore,
	logger *slog.Logger,
) *DependencyService {
	if db == nil {
		panic("db cannot be nil")
	}
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if deps == nil {
		panic("deps cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DependencyService{
		db:     db,
		tasks:  tasks,
		deps:   deps,
		logger: logger.With(slog.String("component", "dependency_service")),
	}
}

// AddDependency creates the edge "taskID depends on dependsOnTaskID" after
// verifying it is not a self reference, both tasks exist, the edge is not a
// duplicate, and it would not close a cycle. The duplicate and cycle checks
// run inside the same transaction as the insert so a concurrent writer
// cannot slip a cycle in between check and insert.
//
// Returns graph.ErrSelfDependency, store.ErrTaskNotFound,
// graph.ErrDuplicateDependency or graph.ErrCyclicDependency.
func (s *DependencyService) AddDependency(
	ctx context.Context,
	taskID, dependsOnTaskID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if taskID == dependsOnTaskID {
		return graph.ErrSelfDependency
	}

	// Both endpoints must exist and be visible.
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}
	if _, err := s.tasks.GetByID(ctx, dependsOnTaskID); err != nil {
		return err
	}

	edge, err := domain.NewDependencyEdge(taskID, dependsOnTaskID)
	if err != nil {
		return err
	}

	return runInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txDeps := s.deps.WithTx(tx)

		exists, err := txDeps.Exists(ctx, taskID, dependsOnTaskID)
		if err != nil {
			return fmt.Errorf("failed to check for existing dependency: %w", err)
		}
		if exists {
			return graph.ErrDuplicateDependency
		}

		cyclic, err := graph.WouldCreateCycle(ctx, taskID, dependsOnTaskID, storeLookup(txDeps))
		if err != nil {
			return fmt.Errorf("failed to check for dependency cycle: %w", err)
		}
		if cyclic {
			log.Warn("rejected cyclic dependency",
				slog.String("task_id", taskID.String()),
				slog.String("depends_on_task_id", dependsOnTaskID.String()))
			return graph.ErrCyclicDependency
		}

		if err := txDeps.Create(ctx, edge); err != nil {
			if errors.Is(err, store.ErrDependencyExists) {
				return graph.ErrDuplicateDependency
			}
			return err
		}

		log.Info("dependency added",
			slog.String("task_id", taskID.String()),
			slog.String("depends_on_task_id", dependsOnTaskID.String()))
		return nil
	})
}

// RemoveDependency deletes the edge between the two tasks. The exact
// direction (taskID depends-on dependsOnTaskID) is tried first; if that edge
// does not exist the reverse direction is removed instead, so callers can
// unlink a pair without knowing which way the edge points.
//
// Returns graph.ErrDependencyNotFound when no edge exists in either
// direction.
func (s *DependencyService) RemoveDependency(
	ctx context.Context,
	taskID, dependsOnTaskID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.deps.Delete(ctx, taskID, dependsOnTaskID)
	if err == nil {
		log.Info("dependency removed",
			slog.String("task_id", taskID.String()),
			slog.String("depends_on_task_id", dependsOnTaskID.String()))
		return nil
	}
	if !errors.Is(err, store.ErrDependencyNotFound) {
		return err
	}

	err = s.deps.Delete(ctx, dependsOnTaskID, taskID)
	if err == nil {
		log.Info("dependency removed in reverse direction",
			slog.String("task_id", dependsOnTaskID.String()),
			slog.String("depends_on_task_id", taskID.String()))
		return nil
	}
	if errors.Is(err, store.ErrDependencyNotFound) {
		return graph.ErrDependencyNotFound
	}
	return err
}

// WouldCreateCycle reports whether adding the edge would close a cycle,
// without mutating anything. Used by the validation endpoint.
func (s *DependencyService) WouldCreateCycle(
	ctx context.Context,
	taskID, dependsOnTaskID uuid.UUID,
) (bool, error) {
	if taskID == dependsOnTaskID {
		return true, nil
	}
	return graph.WouldCreateCycle(ctx, taskID, dependsOnTaskID, storeLookup(s.deps))
}

// storeLookup adapts a DependencyStore to the graph guard's lookup interface.
func storeLookup(deps store.DependencyStore) graph.DependencyLookup {
	return graph.DependencyLookupFunc(
		func(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
			return deps.ListDependsOn(ctx, taskID)
		},
	)
}
