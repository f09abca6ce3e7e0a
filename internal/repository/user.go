package repository

import (
	"context"

	"mediapi/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// FindByUsername returns the user with the given username, or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}
