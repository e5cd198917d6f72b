package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/graph"
	"github.com/rowanvale/taskengine/internal/service"
	"github.com/rowanvale/taskengine/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"cyclic dependency", graph.ErrCyclicDependency, http.StatusConflict},
		{"duplicate dependency", graph.ErrDuplicateDependency, http.StatusConflict},
		{"self dependency", graph.ErrSelfDependency, http.StatusBadRequest},
		{"dependency not found", graph.ErrDependencyNotFound, http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"template not found", service.ErrTemplateNotFound, http.StatusNotFound},
		{"invalid rule", service.ErrInvalidRecurrenceRule, http.StatusBadRequest},
		{"missing anchor", service.ErrMissingAnchorDate, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"domain validation failure", domain.ErrTaskTitleEmpty, http.StatusBadRequest},
		{"dependency exists", store.ErrDependencyExists, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped cycle error",
			fmt.Errorf("adding edge: %w", graph.ErrCyclicDependency),
			http.StatusConflict,
		},
		{
			"store error wrapping not found",
			store.NewStoreError("dependency", "list", "query failed", store.ErrNotFound),
			http.StatusNotFound,
		},
		{
			"update failure wrapping not found",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, store.ErrTaskNotFound),
			http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Dependency would create a cycle",
		GetSafeErrorMessage(graph.ErrCyclicDependency))
	assert.Equal(t, "Task not found",
		GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(nil))

	// Internal details never leak through the safe message.
	leaky := errors.New("pq: connection to 10.0.0.7 refused")
	assert.NotContains(t, GetSafeErrorMessage(leaky), "10.0.0.7")
}
