package domain

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when no valid identity is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller does not own the resource
	// and lacks the role required to act on it
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientStock is returned when a variant has less inventory
	// than the requested quantity
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrIntegrity is returned when persisted catalog data is corrupt
	// (e.g., a non-numeric price)
	ErrIntegrity = errors.New("catalog data integrity violation")

	// ErrConflict is returned when there's a conflict (e.g., optimistic locking)
	ErrConflict = errors.New("conflict occurred")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
