package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()
	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "logpf",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "logging-platform",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishAlertTriggered(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	triggeredAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	event := domain.AlertTriggeredEvent{
		AlertID:        42,
		ApplicationID:  10,
		Level:          domain.LevelError,
		ObservedCount:  17,
		Threshold:      10,
		WindowSeconds:  300,
		NotificationID: 7,
		RecipientID:    3,
		TriggeredAt:    triggeredAt,
	}

	if err := publisher.PublishAlertTriggered(context.Background(), event); err != nil {
		t.Fatalf("PublishAlertTriggered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "logpf.alert.triggered" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			t.Fatalf("Key.Encode returned error: %v", err)
		}
		if string(key) != "42" {
			t.Fatalf("expected message keyed by alert id, got %q", key)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "alert.triggered" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["version"]; got != schemaVersion {
			t.Fatalf("unexpected version: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload missing or wrong shape: %v", envelope["payload"])
		}
		if got := payload["alert_id"]; got != float64(42) {
			t.Fatalf("unexpected alert_id: %v", got)
		}
		if got := payload["observed_count"]; got != float64(17) {
			t.Fatalf("unexpected observed_count: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata missing: %v", envelope["metadata"])
		}
		if got := metadata["service"]; got != "logging-platform" {
			t.Fatalf("unexpected service metadata: %v", got)
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishPermissionsGranted(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.PermissionsGrantedEvent{
		UserIDs:        []int64{7, 8},
		ApplicationIDs: []int64{10},
		GrantedCount:   2,
		ActorID:        1,
	}

	if err := publisher.PublishPermissionsGranted(context.Background(), event); err != nil {
		t.Fatalf("PublishPermissionsGranted returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "logpf.permissions.granted" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishCancelledContext(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	// Fill the input buffer so publish has to wait on the context.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishPermissionsRevoked(ctx, domain.PermissionsRevokedEvent{ActorID: 1})
	if err == nil {
		t.Fatal("expected context error")
	}
}
