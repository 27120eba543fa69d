package repositories

import (
	"context"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/models"
)

// UserRepository defines the operations available on the users table
type UserRepository interface {
	// List returns every row of the users table, unfiltered
	List(ctx context.Context) ([]models.UserRecord, error)

	// Create inserts a user from positionally ordered values and returns the generated ID
	Create(ctx context.Context, firstName, lastName, email interface{}) (int64, error)
}
