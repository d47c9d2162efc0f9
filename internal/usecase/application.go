package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// CreateApplicationInput captures the payload for registering an application.
type CreateApplicationInput struct {
	Name        string
	Description string
}

// UpdateApplicationInput captures the payload for updating an application. Nil
// fields are left unchanged.
type UpdateApplicationInput struct {
	ID          int64
	Name        *string
	Description *string
	IsActive    *bool
}

// ApplicationService manages registered applications. Mutations are admin only;
// reads honor the actor's access scope.
type ApplicationService struct {
	applications port.ApplicationRepository
	permissions  port.PermissionRepository
	users        port.UserRepository
	scopes       *ScopeResolver
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(applications port.ApplicationRepository, permissions port.PermissionRepository, users port.UserRepository, scopes *ScopeResolver) *ApplicationService {
	return &ApplicationService{applications: applications, permissions: permissions, users: users, scopes: scopes}
}

// CreateApplication registers a new application.
func (s *ApplicationService) CreateApplication(ctx context.Context, actor domain.User, input CreateApplicationInput) (*domain.Application, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	app := domain.Application{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}

	id, err := s.applications.Create(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	app.ID = id

	return &app, nil
}

// GetApplication retrieves an application the actor may see.
func (s *ApplicationService) GetApplication(ctx context.Context, actor domain.User, id int64) (*domain.Application, error) {
	scope, err := s.scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if !scope.Allows(id) {
		return nil, ErrPermissionDenied
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// ListApplications returns the applications visible to the actor: all of them
// for admins, the scoped subset otherwise.
func (s *ApplicationService) ListApplications(ctx context.Context, actor domain.User) ([]domain.Application, error) {
	scope, err := s.scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	if scope.IsAdmin {
		apps, err := s.applications.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		return apps, nil
	}

	ids := scope.AllowedIDs()
	if len(ids) == 0 {
		return []domain.Application{}, nil
	}
	apps, err := s.applications.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list applications by ids: %w", err)
	}
	return apps, nil
}

// ListUsersWithAccess returns the users holding an active grant on the
// application. Admin only.
func (s *ApplicationService) ListUsersWithAccess(ctx context.Context, actor domain.User, appID int64) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if _, err := s.applications.GetByID(ctx, appID); err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	userIDs, err := s.permissions.ListActiveUserIDs(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("list active user ids: %w", err)
	}
	if len(userIDs) == 0 {
		return []domain.User{}, nil
	}

	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	return users, nil
}

// UpdateApplication modifies an existing application.
func (s *ApplicationService) UpdateApplication(ctx context.Context, actor domain.User, input UpdateApplicationInput) (*domain.Application, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	app, err := s.applications.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
		}
		app.Name = name
	}
	if input.Description != nil {
		app.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		app.IsActive = *input.IsActive
	}

	if err := s.applications.Update(ctx, *app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	return app, nil
}
