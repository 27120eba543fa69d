package repositories

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrConnection is returned when database connection fails
	ErrConnection = errors.New("database connection error")

	// ErrConstraint is returned when a database constraint is violated
	ErrConstraint = errors.New("constraint violation")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op      string // Operation that failed
	Entity  string // Entity type
	ID      string // Entity ID (if applicable)
	Err     error  // Underlying error
	Message string // Human-readable message
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.ID != "" {
		return fmt.Sprintf("%s %s operation failed for ID %s: %v", e.Entity, e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s %s operation failed: %v", e.Entity, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *RepositoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(op, entity, id string, err error) *RepositoryError {
	return &RepositoryError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// ConstraintError creates a "constraint violation" repository error
func ConstraintError(entity, constraint string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      "constraint",
		Entity:  entity,
		Err:     fmt.Errorf("%w: %v", ErrConstraint, err),
		Message: fmt.Sprintf("constraint violation for %s (%s): %v", entity, constraint, err),
	}
}

// ConnectionError creates a "connection" repository error. The driver's
// message is kept in the error text so callers can log it.
func ConnectionError(err error) *RepositoryError {
	return &RepositoryError{
		Op:      "connect",
		Entity:  "database",
		Err:     fmt.Errorf("%w: %w", ErrConnection, err),
		Message: fmt.Sprintf("database connection failed: %v", err),
	}
}

// IsConstraint checks if an error is a "constraint violation" error
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsConnection checks if an error is a "connection" error
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}
