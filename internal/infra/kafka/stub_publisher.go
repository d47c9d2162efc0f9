package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishAlertTriggered logs alert.triggered events.
func (p *StubPublisher) PublishAlertTriggered(_ context.Context, event domain.AlertTriggeredEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", topicAlertTriggered),
		zap.Int64("alert_id", event.AlertID),
		zap.Int64("application_id", event.ApplicationID),
		zap.Int64("observed_count", event.ObservedCount),
	)
	return nil
}

// PublishPermissionsGranted logs permissions.granted events.
func (p *StubPublisher) PublishPermissionsGranted(_ context.Context, event domain.PermissionsGrantedEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", topicPermissionsGranted),
		zap.Int64s("user_ids", event.UserIDs),
		zap.Int64s("application_ids", event.ApplicationIDs),
		zap.Int("granted_count", event.GrantedCount),
	)
	return nil
}

// PublishPermissionsRevoked logs permissions.revoked events.
func (p *StubPublisher) PublishPermissionsRevoked(_ context.Context, event domain.PermissionsRevokedEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", topicPermissionsRevoked),
		zap.Int64s("user_ids", event.UserIDs),
		zap.Int64s("application_ids", event.ApplicationIDs),
		zap.Int64("revoked_count", event.RevokedCount),
	)
	return nil
}
