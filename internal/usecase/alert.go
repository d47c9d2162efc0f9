package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// CreateAlertInput captures the payload for creating an alert rule.
type CreateAlertInput struct {
	ApplicationID int64
	Level         string
	Count         int
	TimeWindow    time.Duration
}

// UpdateAlertInput captures the payload for updating an alert rule. Nil fields
// are left unchanged.
type UpdateAlertInput struct {
	ID         int64
	Level      *string
	Count      *int
	TimeWindow *time.Duration
	IsActive   *bool
}

// ListAlertsResult includes alerts and pagination metadata.
type ListAlertsResult struct {
	Alerts []domain.Alert
	Total  int64
	Offset int
	Limit  int
}

// AlertService manages alert rules. Creating or editing a rule requires the
// actor's scope to cover the target application.
type AlertService struct {
	alerts       port.AlertRepository
	applications port.ApplicationRepository
	scopes       *ScopeResolver
}

// NewAlertService constructs an AlertService.
func NewAlertService(alerts port.AlertRepository, applications port.ApplicationRepository, scopes *ScopeResolver) *AlertService {
	return &AlertService{alerts: alerts, applications: applications, scopes: scopes}
}

func validateAlertConfig(count int, window time.Duration) error {
	if count <= 0 {
		return fmt.Errorf("%w: count must be positive", ErrInvalidArgument)
	}
	if window <= 0 {
		return fmt.Errorf("%w: time window must be positive", ErrInvalidArgument)
	}
	return nil
}

// CreateAlert registers a new alert rule owned by the actor.
func (s *AlertService) CreateAlert(ctx context.Context, actor domain.User, input CreateAlertInput) (*domain.Alert, error) {
	level, err := domain.ParseLevel(input.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := validateAlertConfig(input.Count, input.TimeWindow); err != nil {
		return nil, err
	}

	if _, err := s.applications.GetByID(ctx, input.ApplicationID); err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	scope, err := s.scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if !scope.Allows(input.ApplicationID) {
		return nil, ErrPermissionDenied
	}

	exists, err := s.alerts.ExistsWithConfig(ctx, input.ApplicationID, level, input.Count, input.TimeWindow, 0)
	if err != nil {
		return nil, fmt.Errorf("check alert config: %w", err)
	}
	if exists {
		return nil, ErrAlertConfigExists
	}

	alert := domain.Alert{
		ApplicationID: input.ApplicationID,
		Level:         level,
		Count:         input.Count,
		TimeWindow:    input.TimeWindow,
		IsActive:      true,
		CreatedByID:   actor.ID,
	}

	id, err := s.alerts.Create(ctx, alert)
	if err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	alert.ID = id

	return &alert, nil
}

// GetAlert retrieves an alert the actor may see.
func (s *AlertService) GetAlert(ctx context.Context, actor domain.User, id int64) (*domain.Alert, error) {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	if err := s.authorize(ctx, actor, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// ListAlerts returns a page of all alert rules. Admin only.
func (s *AlertService) ListAlerts(ctx context.Context, actor domain.User, offset, limit int) (*ListAlertsResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset must not be negative and limit must be positive", ErrInvalidArgument)
	}

	alerts, total, err := s.alerts.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	return &ListAlertsResult{Alerts: alerts, Total: total, Offset: offset, Limit: limit}, nil
}

// ListOwnAlerts returns every alert rule the actor created.
func (s *AlertService) ListOwnAlerts(ctx context.Context, actor domain.User) ([]domain.Alert, error) {
	alerts, err := s.alerts.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list alerts by creator: %w", err)
	}
	return alerts, nil
}

// UpdateAlert modifies an existing alert rule.
func (s *AlertService) UpdateAlert(ctx context.Context, actor domain.User, input UpdateAlertInput) (*domain.Alert, error) {
	alert, err := s.alerts.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	if err := s.authorize(ctx, actor, alert); err != nil {
		return nil, err
	}

	if input.Level != nil {
		level, err := domain.ParseLevel(*input.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		alert.Level = level
	}
	if input.Count != nil {
		alert.Count = *input.Count
	}
	if input.TimeWindow != nil {
		alert.TimeWindow = *input.TimeWindow
	}
	if err := validateAlertConfig(alert.Count, alert.TimeWindow); err != nil {
		return nil, err
	}
	if input.IsActive != nil {
		alert.IsActive = *input.IsActive
	}

	exists, err := s.alerts.ExistsWithConfig(ctx, alert.ApplicationID, alert.Level, alert.Count, alert.TimeWindow, alert.ID)
	if err != nil {
		return nil, fmt.Errorf("check alert config: %w", err)
	}
	if exists {
		return nil, ErrAlertConfigExists
	}

	if err := s.alerts.Update(ctx, *alert); err != nil {
		return nil, fmt.Errorf("update alert: %w", err)
	}

	return alert, nil
}

// DeleteAlert removes an alert rule.
func (s *AlertService) DeleteAlert(ctx context.Context, actor domain.User, id int64) error {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get alert: %w", err)
	}
	if err := s.authorize(ctx, actor, alert); err != nil {
		return err
	}

	if err := s.alerts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	return nil
}

// authorize permits admins and the alert's creator.
func (s *AlertService) authorize(_ context.Context, actor domain.User, alert *domain.Alert) error {
	if actor.IsAdmin() || alert.CreatedByID == actor.ID {
		return nil
	}
	return ErrPermissionDenied
}
