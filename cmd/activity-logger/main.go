package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aula/internal/activity/repository"
	"aula/internal/activity/service"
	"aula/pkg/config"
	"aula/pkg/contracts"
	"aula/pkg/kafka"
	kafka_config "aula/pkg/kafka/config"
	kafkamw "aula/pkg/kafka/middleware"
)

const ServiceName = "activity-logger"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting activity logger")

	activityRepo := repository.NewMongoActivityRepository(cfg)
	recorder := service.NewRecorder(activityRepo, cfg)

	consumer, err := kafka.NewConsumer(
		kafka_config.Load(),
		contracts.ReservationEventsTopic,
		contracts.ActivityLoggerGroupID,
		contracts.ReservationEventsDLQTopic,
		recorder.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka consumer", "error", err)
	}
	consumer.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Warn("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Activity logger stopped")
}
