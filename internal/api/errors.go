package api

import (
	"errors"
	"net/http"

	"github.com/rowanvale/taskengine/internal/domain"
	"github.com/rowanvale/taskengine/internal/graph"
	"github.com/rowanvale/taskengine/internal/service"
	"github.com/rowanvale/taskengine/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Conflict errors
	case errors.Is(err, graph.ErrCyclicDependency),
		errors.Is(err, graph.ErrDuplicateDependency),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, graph.ErrDependencyNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, graph.ErrSelfDependency),
		errors.Is(err, service.ErrInvalidRecurrenceRule),
		errors.Is(err, service.ErrMissingAnchorDate),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, graph.ErrCyclicDependency):
		return "Dependency would create a cycle"

	case errors.Is(err, graph.ErrDuplicateDependency):
		return "Dependency already exists"

	case errors.Is(err, graph.ErrSelfDependency):
		return "Task cannot depend on itself"

	case errors.Is(err, graph.ErrDependencyNotFound):
		return "Dependency not found"

	case errors.Is(err, service.ErrTemplateNotFound):
		return "Recurring template not found"

	case errors.Is(err, service.ErrMissingAnchorDate):
		return "Recurring template has no due date"

	case errors.Is(err, service.ErrInvalidRecurrenceRule):
		return "Invalid recurrence rule"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
