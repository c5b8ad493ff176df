package store

import (
	"context"

	"shop-service/internal/models"
)

// CreateUser inserts a user, ErrConflict when the email is taken
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.GetContext(ctx, user, `
		INSERT INTO users (email, hashed_password, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, hashed_password, name, created_at`,
		user.Email, user.HashedPassword, user.Name)
	return translateError(err)
}

// ListUsers retrieves a page of users, newest first
func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, email, hashed_password, name, created_at
		FROM users ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`,
		skip, limit)
	return users, err
}
