package services

import (
	"context"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/models"
)

// UserService defines the interface for user business logic operations
type UserService interface {
	// ListUsers returns every user row as the database reports it
	ListUsers(ctx context.Context) ([]models.UserRecord, error)

	// CreateUser validates a raw request body and inserts the user it describes.
	// A body missing a required key yields a *models.ValidationError naming it.
	CreateUser(ctx context.Context, body []byte) (*models.CreatedUser, error)
}
