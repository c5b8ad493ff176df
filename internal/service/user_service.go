package service

import (
	"context"
	"fmt"
	"strings"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists users
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
}

// UserService registers and lists shop users
type UserService struct {
	store  UserStore
	cost   int
	logger *zap.Logger
}

// NewUserService creates a user service hashing with bcrypt's default cost
func NewUserService(store UserStore) *UserService {
	return &UserService{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: util.GetLogger(),
	}
}

// RegisterRequest represents a sign-up payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register stores a new user with a bcrypt password hash
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Register")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Name:           req.Name,
		HashedPassword: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// ListUsers lists users newest first
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	skip, limit = pageBounds(skip, limit)
	return s.store.ListUsers(ctx, skip, limit)
}

// CheckPassword reports whether password matches the stored hash
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) == nil
}
