package service

import (
	"context"
	"time"

	"aula/internal/reservations/repository"
	"aula/pkg/clock"
	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/model"
)

// SweepResult reports how many reservations each sweep step moved.
type SweepResult struct {
	Started      int64 `json:"started"`
	Completed    int64 `json:"completed"`
	ExpiredDates int64 `json:"expired_dates"`
}

func (r SweepResult) Total() int64 {
	return r.Started + r.Completed + r.ExpiredDates
}

// SweepService advances time-driven status transitions. Every step is a
// conditional bulk update keyed on the current status, so concurrent
// sweepers and repeated runs converge on the same state without moving
// any reservation twice.
type SweepService interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type sweepService struct {
	repo  repository.ReservationRepository
	clock clock.Clock
	cfg   *config.Config
}

func NewSweepService(repo repository.ReservationRepository, clk clock.Clock, cfg *config.Config) SweepService {
	return &sweepService{
		repo:  repo,
		clock: clk,
		cfg:   cfg,
	}
}

func (s *sweepService) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()
	today := model.DateAt(now)
	minute := model.TimeOfDayAt(now)

	var result SweepResult
	var err error

	result.Started, err = s.repo.MarkOngoing(ctx, today, minute)
	if err != nil {
		s.cfg.Log.Error("Sweep failed while starting reservations", "error", err)
		return result, apperrors.Internal("Failed to start due reservations", err)
	}

	result.Completed, err = s.repo.MarkDoneAfterEnd(ctx, today, minute)
	if err != nil {
		s.cfg.Log.Error("Sweep failed while completing reservations", "error", err)
		return result, apperrors.Internal("Failed to complete ended reservations", err)
	}

	result.ExpiredDates, err = s.repo.MarkDonePastDate(ctx, today)
	if err != nil {
		s.cfg.Log.Error("Sweep failed while expiring past reservations", "error", err)
		return result, apperrors.Internal("Failed to expire past reservations", err)
	}

	if result.Total() > 0 {
		s.cfg.Log.Info("Reservation sweep completed",
			"date", today,
			"time", minute.String(),
			"started", result.Started,
			"completed", result.Completed,
			"expired_dates", result.ExpiredDates,
		)
	}
	return result, nil
}

// Sweeper runs the sweep on a fixed interval until the context is
// cancelled. Safe to run alongside other sweeper instances.
type Sweeper struct {
	service  SweepService
	interval time.Duration
	cfg      *config.Config
}

func NewSweeper(service SweepService, cfg *config.Config) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: cfg.SweepInterval,
		cfg:      cfg,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.cfg.Log.Info("Reservation sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if _, err := s.service.Sweep(ctx); err != nil {
		s.cfg.Log.Error("Initial sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.cfg.Log.Info("Reservation sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.service.Sweep(ctx); err != nil {
				s.cfg.Log.Error("Scheduled sweep failed", "error", err)
			}
		}
	}
}
