package port

import (
	"context"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// EventPublisher fans domain events out to interested consumers. Publishing is
// best-effort from the caller's point of view: failures are logged, never
// propagated into the triggering operation.
type EventPublisher interface {
	PublishAlertTriggered(ctx context.Context, event domain.AlertTriggeredEvent) error
	PublishPermissionsGranted(ctx context.Context, event domain.PermissionsGrantedEvent) error
	PublishPermissionsRevoked(ctx context.Context, event domain.PermissionsRevokedEvent) error
}
