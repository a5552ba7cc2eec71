package publisher

import (
	"context"
	"time"

	"flpsaude/pkg/kafka"
	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"
)

// ChangePublisher notifies downstream consumers that a professional's
// availability configuration changed.
type ChangePublisher interface {
	PublishAvailabilityChanged(ctx context.Context, professionalID string) error
}

type kafkaChangePublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaChangePublisher(producer *kafka.Producer, source string, log *logger.Logger) ChangePublisher {
	return &kafkaChangePublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaChangePublisher) PublishAvailabilityChanged(ctx context.Context, professionalID string) error {
	event := model.AvailabilityChangedEvent{
		ProfessionalID: professionalID,
		ChangedAt:      time.Now().UTC(),
	}

	// Keyed by professional id so per-professional events stay ordered
	msg := kafka.NewMessage().
		WithKey(professionalID).
		WithValue(event).
		WithEventType(model.EventTypeAvailabilityChanged).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish availability change event",
			"professional_id", professionalID,
			"error", err,
		)
		return err
	}

	p.log.Debug("Availability change event published",
		"professional_id", professionalID,
		"event_id", msg.GetEventID(),
	)
	return nil
}

// NoopChangePublisher is used when event publishing is disabled.
type NoopChangePublisher struct{}

func (NoopChangePublisher) PublishAvailabilityChanged(ctx context.Context, professionalID string) error {
	return nil
}
