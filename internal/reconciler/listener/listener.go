// Package listener consumes availability change events and triggers a
// targeted reconciliation for the affected professional, keeping slots
// fresh between full runs.
package listener

import (
	"context"
	"fmt"

	"flpsaude/internal/reconciler/service"
	"flpsaude/pkg/kafka"
	kafka_config "flpsaude/pkg/kafka/config"
	kafka_middleware "flpsaude/pkg/kafka/middleware"
	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"
)

const (
	GroupID  = "slot-reconciler"
	DLQTopic = "availability.changed.dlq"
)

type AvailabilityListener struct {
	consumer *kafka.Consumer
	log      *logger.Logger
}

func NewAvailabilityListener(
	kafkaCfg *kafka_config.Config,
	reconciler service.ReconcilerService,
	log *logger.Logger,
) (*AvailabilityListener, error) {
	handler := func(ctx context.Context, msg kafka.Message) error {
		var event model.AvailabilityChangedEvent
		if err := msg.DecodeValue(&event); err != nil {
			// Undecodable payloads will never succeed; let the
			// consumer route them to the DLQ.
			return kafka.NewPermanentError("failed to decode availability change event", err)
		}
		if event.ProfessionalID == "" {
			return kafka.NewPermanentError("availability change event without professional_id", nil)
		}

		log.Info("Availability change event received",
			"professional_id", event.ProfessionalID,
			"event_id", msg.GetEventID(),
		)

		summary, err := reconciler.Run(ctx, event.ProfessionalID)
		if err != nil {
			return fmt.Errorf("reconciliation for professional %s failed: %w", event.ProfessionalID, err)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("reconciliation for professional %s did not complete", event.ProfessionalID)
		}

		log.Info("Targeted reconciliation completed",
			"professional_id", event.ProfessionalID,
			"inserted", summary.Inserted,
			"deleted", summary.Deleted,
		)
		return nil
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, model.EventTypeAvailabilityChanged, GroupID, DLQTopic, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to create availability consumer: %w", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
	}

	return &AvailabilityListener{
		consumer: consumer,
		log:      log,
	}, nil
}

// Start blocks consuming events until the context is cancelled.
func (l *AvailabilityListener) Start(ctx context.Context) error {
	l.log.Info("Availability change listener starting",
		"topic", model.EventTypeAvailabilityChanged,
		"group_id", GroupID,
	)
	return l.consumer.Start(ctx)
}

func (l *AvailabilityListener) Close() error {
	return l.consumer.Close()
}
