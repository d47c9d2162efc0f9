package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	topicAlertTriggered     = "alert.triggered"
	topicPermissionsGranted = "permissions.granted"
	topicPermissionsRevoked = "permissions.revoked"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventType, key string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}
	if key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAlertTriggered publishes alert.triggered events keyed by alert id so
// triggers of one alert stay ordered.
func (p *EventPublisher) PublishAlertTriggered(ctx context.Context, event domain.AlertTriggeredEvent) error {
	return p.publish(ctx, topicAlertTriggered, strconv.FormatInt(event.AlertID, 10), event.TriggeredAt, event)
}

// PublishPermissionsGranted publishes permissions.granted events.
func (p *EventPublisher) PublishPermissionsGranted(ctx context.Context, event domain.PermissionsGrantedEvent) error {
	return p.publish(ctx, topicPermissionsGranted, strconv.FormatInt(event.ActorID, 10), time.Time{}, event)
}

// PublishPermissionsRevoked publishes permissions.revoked events.
func (p *EventPublisher) PublishPermissionsRevoked(ctx context.Context, event domain.PermissionsRevokedEvent) error {
	return p.publish(ctx, topicPermissionsRevoked, strconv.FormatInt(event.ActorID, 10), time.Time{}, event)
}
