package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/schoolregistry/server/internal/model"
)

// ErrNotFound means the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepo defines the interface for authenticated-user records.
type UserRepo interface {
	Upsert(ctx context.Context, email string) (model.AuthenticatedUser, error)
	GetByEmail(ctx context.Context, email string) (model.AuthenticatedUser, error)
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

// Upsert records a successful login: inserts the email on first login,
// bumps last_login on every later one.
func (r *userRepo) Upsert(ctx context.Context, email string) (model.AuthenticatedUser, error) {
	var user model.AuthenticatedUser
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO authenticated_users (email, last_login)
		VALUES ($1, now())
		ON CONFLICT (email) DO UPDATE SET last_login = now()
		RETURNING id, email, last_login
	`, email).Scan(&user.ID, &user.Email, &user.LastLogin)
	if err != nil {
		return model.AuthenticatedUser{}, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves an authenticated user by email.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.AuthenticatedUser, error) {
	var user model.AuthenticatedUser
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, last_login FROM authenticated_users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AuthenticatedUser{}, ErrNotFound
		}
		return model.AuthenticatedUser{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}
