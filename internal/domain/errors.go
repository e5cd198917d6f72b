// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is the root of every entity validation error. All
	// field-specific validation sentinels wrap it, so errors.Is(err,
	// ErrValidation) matches any validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPriority is returned when a priority value is not one of
	// the four known levels.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)

	// ErrInvalidStatus is returned when a task status is not valid.
	ErrInvalidStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidTimeEstimate is returned when a time estimate is negative.
	ErrInvalidTimeEstimate = fmt.Errorf("%w: time estimate must be non-negative", ErrValidation)
)
