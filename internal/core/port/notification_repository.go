package port

import (
	"context"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// NotificationRepository retrieves notifications and flips their read flag.
type NotificationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, userID int64, offset, limit int) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, id int64) error
}
