package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aula/internal/reservations/repository"
	"aula/internal/reservations/service"
	"aula/pkg/clock"
	"aula/pkg/config"
)

const ServiceName = "sweeper"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting standalone reservation sweeper")

	reservationRepo := repository.NewMongoReservationRepository(cfg)
	sweepService := service.NewSweepService(reservationRepo, clock.System(cfg.Location), cfg)
	sweeper := service.NewSweeper(sweepService, cfg)

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	sweeper.Run(ctx)
}
