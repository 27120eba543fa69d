package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionError(t *testing.T) {
	driverErr := errors.New("login failed for user 'sa'")
	err := ConnectionError(driverErr)

	assert.True(t, IsConnection(err))
	assert.True(t, errors.Is(err, driverErr), "driver error should stay reachable")
	assert.Contains(t, err.Error(), "login failed for user 'sa'")
	assert.False(t, IsConstraint(err))

	wrapped := fmt.Errorf("open session: %w", err)
	assert.True(t, IsConnection(wrapped))
}

func TestConstraintError(t *testing.T) {
	cause := errors.New("NOT NULL constraint failed: users.email")

	constraint := ConstraintError("user", "not_null", cause)
	assert.True(t, IsConstraint(constraint))
	assert.False(t, IsConnection(constraint))
	assert.Contains(t, constraint.Error(), "users.email")
	assert.Equal(t, "constraint violation for user (not_null): NOT NULL constraint failed: users.email", constraint.Error())
}

func TestRepositoryError_Message(t *testing.T) {
	err := NewRepositoryError("list", "user", "", errors.New("no such table: users"))
	assert.Equal(t, "user list operation failed: no such table: users", err.Error())

	withID := NewRepositoryError("get", "user", "7", ErrNotFound)
	assert.Equal(t, "user get operation failed for ID 7: entity not found", withID.Error())
	assert.True(t, errors.Is(withID, ErrNotFound))
}
