package repository

import (
	"context"
	"fmt"

	"github.com/hray3182/todolist/internal/database"
	"github.com/hray3182/todolist/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A duplicate username yields ErrUsernameTaken and
// leaves the table untouched.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO app_user (username, password_hash) VALUES ($1, $2)
		 RETURNING user_id, created_at`,
		user.Username, user.PasswordHash,
	).Scan(&user.UserID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id, username, password_hash, created_at FROM app_user WHERE username = $1`,
		username,
	).Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}
