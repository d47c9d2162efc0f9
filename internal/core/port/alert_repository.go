package port

import (
	"context"
	"time"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// AlertRepository persists alert rules and the write side of a trigger.
type AlertRepository interface {
	Create(ctx context.Context, alert domain.Alert) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Alert, error)
	List(ctx context.Context, offset, limit int) ([]domain.Alert, int64, error)
	ListByCreator(ctx context.Context, userID int64) ([]domain.Alert, error)
	ListActive(ctx context.Context) ([]domain.Alert, error)
	// ExistsWithConfig reports whether another alert already carries the exact
	// same (application, level, count, window) configuration. excludeID is
	// ignored when zero.
	ExistsWithConfig(ctx context.Context, appID int64, level domain.Level, count int, window time.Duration, excludeID int64) (bool, error)
	Update(ctx context.Context, alert domain.Alert) error
	Delete(ctx context.Context, id int64) error
	// RecordTrigger atomically inserts the notification and bumps the alert's
	// updated_at timestamp; both commit together or not at all. It returns the
	// new notification id.
	RecordTrigger(ctx context.Context, alertID int64, notification domain.Notification, at time.Time) (int64, error)
}
