package usecase

import (
	"context"
	"fmt"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// ListNotificationsResult includes notifications and pagination metadata.
type ListNotificationsResult struct {
	Notifications []domain.Notification
	Total         int64
	Offset        int
	Limit         int
}

// NotificationService lets users read their alert notifications.
type NotificationService struct {
	notifications port.NotificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications port.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListOwn returns a page of the actor's notifications, newest first.
func (s *NotificationService) ListOwn(ctx context.Context, actor domain.User, offset, limit int) (*ListNotificationsResult, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset must not be negative and limit must be positive", ErrInvalidArgument)
	}

	notifications, total, err := s.notifications.ListByRecipient(ctx, actor.ID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return &ListNotificationsResult{
		Notifications: notifications,
		Total:         total,
		Offset:        offset,
		Limit:         limit,
	}, nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.User, id int64) error {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get notification: %w", err)
	}
	if notification.RecipientID != actor.ID {
		return ErrPermissionDenied
	}

	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
