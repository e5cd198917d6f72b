// Package graph enforces cycle-safety on the task dependency graph.
//
// The dependency edge set, viewed as a directed graph over task ids, must
// stay acyclic. The guard decides, before any edge is persisted, whether
// adding it would close a cycle. Traversal reads the live edge set through a
// caller-supplied DependencyLookup so the algorithm is independent of any
// particular store and testable against an in-memory graph.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Named rejection conditions for dependency mutations. These are semantic
// preconditions, not transient failures: the same inputs always produce the
// same rejection.
var (
	// ErrSelfDependency is returned when a task is linked to itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")

	// ErrDuplicateDependency is returned when the edge already exists.
	ErrDuplicateDependency = errors.New("dependency already exists")

	// ErrCyclicDependency is returned when adding the edge would create a
	// cycle in the dependency graph.
	ErrCyclicDependency = errors.New("dependency would create a cycle")

	// ErrDependencyNotFound is returned when removing an edge that exists in
	// neither direction.
	ErrDependencyNotFound = errors.New("dependency not found")
)

// DependencyLookup supplies, for any task id, the ids of the tasks it
// currently depends on. Implementations are typically backed by the
// dependency store, or by an in-memory map in tests.
type DependencyLookup interface {
	DependsOn(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)
}

// DependencyLookupFunc adapts a plain function to the DependencyLookup
// interface.
type DependencyLookupFunc func(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)

// DependsOn implements DependencyLookup.
func (f DependencyLookupFunc) DependsOn(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	return f(ctx, taskID)
}

// WouldCreateCycle reports whether adding the edge (taskID depends-on
// dependsOnTaskID) would close a cycle, i.e. whether dependsOnTaskID already
// depends on taskID, transitively.
//
// The check is a breadth-first reachability traversal starting from
// dependsOnTaskID and following dependency edges outward. A visited set
// keyed by task id guarantees termination on diamond-shaped and
// already-cyclic graphs. Cost is O(V+E) over the subgraph reachable from
// dependsOnTaskID.
func WouldCreateCycle(
	ctx context.Context,
	taskID, dependsOnTaskID uuid.UUID,
	lookup DependencyLookup,
) (bool, error) {
	// A self edge is trivially a cycle; callers normally reject it earlier
	// with ErrSelfDependency.
	if taskID == dependsOnTaskID {
		return true, nil
	}

	visited := map[uuid.UUID]bool{dependsOnTaskID: true}
	queue := []uuid.UUID{dependsOnTaskID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		deps, err := lookup.DependsOn(ctx, current)
		if err != nil {
			return false, fmt.Errorf("failed to look up dependencies of %s: %w", current, err)
		}

		for _, dep := range deps {
			if dep == taskID {
				return true, nil
			}
			if visited[dep] {
				continue
			}
			visited[dep] = true
			queue = append(queue, dep)
		}
	}

	return false, nil
}
