package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dependency-specific validation errors
var (
	// ErrDependencyTaskIDEmpty is returned when either side of an edge is nil.
	ErrDependencyTaskIDEmpty = fmt.Errorf("%w: dependency task ID cannot be empty", ErrValidation)

	// ErrDependencySelfReference is returned when an edge points at itself.
	ErrDependencySelfReference = fmt.Errorf("%w: task cannot depend on itself", ErrValidation)
)

// DependencyEdge is a directed relation "TaskID depends on DependsOnTaskID".
// The edge set, viewed as a directed graph over task ids, must remain acyclic
// at all times; that invariant is enforced before insertion by the graph
// guard, never repaired after.
type DependencyEdge struct {
	TaskID          uuid.UUID `json:"task_id"`
	DependsOnTaskID uuid.UUID `json:"depends_on_task_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewDependencyEdge creates a dependency edge between two distinct tasks.
func NewDependencyEdge(taskID, dependsOnTaskID uuid.UUID) (*DependencyEdge, error) {
	edge := &DependencyEdge{
		TaskID:          taskID,
		DependsOnTaskID: dependsOnTaskID,
		CreatedAt:       time.Now().UTC(),
	}

	if err := edge.Validate(); err != nil {
		return nil, err
	}

	return edge, nil
}

// Validate checks the edge's structural invariants.
func (e *DependencyEdge) Validate() error {
	if e.TaskID == uuid.Nil || e.DependsOnTaskID == uuid.Nil {
		return ErrDependencyTaskIDEmpty
	}

	if e.TaskID == e.DependsOnTaskID {
		return ErrDependencySelfReference
	}

	return nil
}
