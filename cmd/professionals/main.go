package main

import (
	"flpsaude/internal/professionals/handler"
	"flpsaude/internal/professionals/repository"
	"flpsaude/internal/professionals/service"
	"flpsaude/internal/professionals/validator"
	"flpsaude/pkg/app"
	"flpsaude/pkg/config"
)

const ServiceName = "professionals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Professionals service")
	professionalService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewProfessionalHandler(professionalService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ProfessionalService {
	professionalValidator := validator.NewProfessionalValidator(cfg.Log)
	professionalRepo := repository.NewMongoProfessionalRepository(cfg)
	professionalService := service.NewProfessionalService(
		professionalRepo,
		professionalValidator,
		cfg,
	)

	cfg.Log.Info("Professionals service initialized", "database", cfg.MongoDatabaseName)
	return professionalService
}
