package main

import (
	"flpsaude/internal/availability/handler"
	"flpsaude/internal/availability/publisher"
	"flpsaude/internal/availability/repository"
	"flpsaude/internal/availability/service"
	"flpsaude/internal/availability/validator"
	"flpsaude/pkg/app"
	"flpsaude/pkg/config"
	"flpsaude/pkg/kafka"
	kafka_config "flpsaude/pkg/kafka/config"
	kafka_middleware "flpsaude/pkg/kafka/middleware"
	"flpsaude/pkg/model"
)

const (
	ServiceName = "availability"
	DLQTopic    = "availability.changed.dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")

	changePublisher, producer := initPublisher(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Warn("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	availabilityService := initServices(cfg, changePublisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

// initPublisher wires the change-event producer. Publishing is best
// effort, so a broker that cannot be reached at startup degrades to
// the noop publisher instead of blocking the service.
func initPublisher(cfg *config.Config) (publisher.ChangePublisher, *kafka.Producer) {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, model.EventTypeAvailabilityChanged, DLQTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, availability change events disabled", "error", err)
		return publisher.NoopChangePublisher{}, nil
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
	}

	return publisher.NewKafkaChangePublisher(producer, ServiceName, cfg.Log), producer
}

func initServices(cfg *config.Config, changePublisher publisher.ChangePublisher) service.AvailabilityService {
	availabilityValidator := validator.NewAvailabilityValidator(cfg.Log)
	availabilityRepo := repository.NewMongoAvailabilityRepository(cfg)
	availabilityService := service.NewAvailabilityService(
		availabilityRepo,
		availabilityValidator,
		changePublisher,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
