package main

import (
	"flpsaude/internal/appointments/handler"
	"flpsaude/internal/appointments/repository"
	"flpsaude/internal/appointments/service"
	"flpsaude/internal/appointments/validator"
	"flpsaude/pkg/app"
	"flpsaude/pkg/config"
	dbmongo "flpsaude/pkg/db/mongo"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Appointments service")
	appointmentService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AppointmentService {
	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	txManager := dbmongo.NewTransactionManager(cfg.Client.Mongo)
	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		lockRepo,
		txManager,
		appointmentValidator,
		cfg,
	)

	cfg.Log.Info("Appointments service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}
