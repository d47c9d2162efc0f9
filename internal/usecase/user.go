package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// CreateUserInput captures the payload for registering a user account.
type CreateUserInput struct {
	Email string
	Role  string
}

// UserService manages user accounts. All mutations are admin only.
type UserService struct {
	users port.UserRepository
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser registers a new account.
func (s *UserService) CreateUser(ctx context.Context, actor domain.User, input CreateUserInput) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidArgument)
	}

	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	user := domain.User{Email: email, Role: role}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	return &user, nil
}

// GetUser retrieves an account by id. Users may read themselves; everything
// else requires admin.
func (s *UserService) GetUser(ctx context.Context, actor domain.User, id int64) (*domain.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every account. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
