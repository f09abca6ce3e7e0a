package postgres

import (
	"context"
	"database/sql"
	"errors"

	"mediapi/internal/model"
	"mediapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// FindByUsername fetches a user account by username.
func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = "SELECT id, username, hashed_password FROM users WHERE username = $1"
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.HashedPassword); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
