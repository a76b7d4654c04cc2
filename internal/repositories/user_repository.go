package repositories

import (
	"context"

	"storeapi/internal/models"
)

// UserRepository defines the interface for user data access.
//
// Create reports a duplicate email with an apperr.Conflict error; the
// lookup reports a missing user with an apperr.NotFound error.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
