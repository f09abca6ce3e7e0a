// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup. Absence is the
	// failure signal; it is never wrapped in a retryable error.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint is violated, e.g. two
	// concurrent writers racing to create the same keyword or content name.
	// It is transient: the losing writer may retry.
	ErrConflict = errors.New("storage conflict")
)
