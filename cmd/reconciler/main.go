package main

import (
	"context"
	"errors"

	"flpsaude/internal/reconciler/handler"
	"flpsaude/internal/reconciler/listener"
	"flpsaude/internal/reconciler/repository"
	"flpsaude/internal/reconciler/service"
	"flpsaude/pkg/app"
	"flpsaude/pkg/config"
	kafka_config "flpsaude/pkg/kafka/config"
)

const ServiceName = "reconciler"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Slot Reconciler service")

	store := repository.NewMongoReconcilerStore(cfg)
	reconcilerService := service.NewReconcilerService(store, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startListener(ctx, cfg, reconcilerService)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReconcilerHandler(reconcilerService, cfg.Log))
	serverApp.Run()
}

// startListener consumes availability change events so edits trigger a
// targeted run without waiting for the next manual invocation. The
// HTTP trigger keeps working without a broker.
func startListener(ctx context.Context, cfg *config.Config, reconcilerService service.ReconcilerService) {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	availabilityListener, err := listener.NewAvailabilityListener(kafkaCfg, reconcilerService, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Availability listener unavailable, running with HTTP trigger only", "error", err)
		return
	}

	go func() {
		if err := availabilityListener.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Availability listener stopped", "error", err)
		}
	}()
}
