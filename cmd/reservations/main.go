package main

import (
	activityhandler "aula/internal/activity/handler"
	activityrepository "aula/internal/activity/repository"
	activityservice "aula/internal/activity/service"
	classroomhandler "aula/internal/classrooms/handler"
	classroomrepository "aula/internal/classrooms/repository"
	classroomservice "aula/internal/classrooms/service"
	"aula/internal/reservations/handler"
	"aula/internal/reservations/repository"
	"aula/internal/reservations/service"
	"aula/internal/reservations/validator"
	"aula/pkg/app"
	"aula/pkg/clock"
	"aula/pkg/config"
	"aula/pkg/contracts"
	"aula/pkg/kafka"
	kafka_config "aula/pkg/kafka/config"
	kafkamw "aula/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	publisher, closeProducer := initPublisher(cfg)
	defer closeProducer()

	clk := clock.System(cfg.Location)

	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewReservationLockRepository(cfg)
	classroomRepo := classroomrepository.NewMongoClassroomRepository(cfg)
	activityRepo := activityrepository.NewMongoActivityRepository(cfg)

	reservationValidator := validator.NewReservationValidator(cfg.Log)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		classroomRepo,
		reservationValidator,
		publisher,
		clk,
		cfg,
	)
	availabilityService := service.NewAvailabilityService(reservationRepo, classroomRepo, cfg)
	sweepService := service.NewSweepService(reservationRepo, clk, cfg)
	classroomService := classroomservice.NewClassroomService(classroomRepo, cfg)
	recorder := activityservice.NewRecorder(activityRepo, cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		classroomhandler.NewClassroomHandler(classroomService, availabilityService, cfg.Log),
		activityhandler.NewActivityHandler(recorder, cfg.Log),
	)

	// The embedded sweeper keeps statuses current even when no dedicated
	// sweeper instance is deployed.
	sweeper := service.NewSweeper(sweepService, cfg)
	serverApp.AddWorker(sweeper.Run)

	serverApp.Run()
}

func initPublisher(cfg *config.Config) (service.EventPublisher, func()) {
	kafkaCfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kafkaCfg, contracts.ReservationEventsTopic, contracts.ReservationEventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Event publishing disabled: failed to initialize Kafka producer", "error", err)
		return service.NewNoopEventPublisher(), func() {}
	}
	producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))

	return service.NewKafkaEventPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer", "error", err)
		}
	}
}
