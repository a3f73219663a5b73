package service

import (
	"context"
	"errors"

	classroomserrors "aula/internal/classrooms/errors"
	"aula/internal/reservations/repository"
	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/model"
)

// AvailabilityService answers the two occupancy questions the engine
// supports. The single-slot check uses the strict booking-time rule
// (pending holds block), while the room search uses the relaxed discovery
// rule (only approved and ongoing block). The asymmetry is intentional: a
// room with nothing but pending requests still shows up as a candidate,
// but nobody can double-book under a pending hold.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, classroomID string, date model.Date, slot model.Interval, excludeID string) (bool, error)
	FindAvailableClassrooms(ctx context.Context, date model.Date, slot model.Interval) ([]*model.Classroom, error)
	ListOccupiedSlots(ctx context.Context, classroomID string, date model.Date) ([]*model.OccupiedSlot, error)
}

type availabilityService struct {
	repo       repository.ReservationRepository
	classrooms ClassroomCatalog
	cfg        *config.Config
}

func NewAvailabilityService(
	repo repository.ReservationRepository,
	classrooms ClassroomCatalog,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:       repo,
		classrooms: classrooms,
		cfg:        cfg,
	}
}

// CheckAvailability reports whether the slot is free under the
// booking-time rule. A non-empty excludeID leaves that reservation out
// of the check, letting a caller pre-validate an edit against everything
// but itself.
func (s *availabilityService) CheckAvailability(ctx context.Context, classroomID string, date model.Date, slot model.Interval, excludeID string) (bool, error) {
	if classroomID == "" {
		return false, apperrors.InvalidInput("Classroom ID cannot be empty")
	}
	if err := validateQuery(date, slot); err != nil {
		return false, err
	}

	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, classroomserrors.ErrNotFound) {
			return false, apperrors.NotFoundWithID("Classroom", classroomID)
		}
		return false, apperrors.Internal("Failed to look up classroom", err)
	}
	if !classroom.Bookable() {
		return false, nil
	}

	overlapping, err := s.repo.FindOverlapping(ctx, classroomID, date, slot, model.ActiveStatuses, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability",
			"classroom_id", classroomID,
			"date", date,
			"error", err,
		)
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return len(overlapping) == 0, nil
}

func (s *availabilityService) FindAvailableClassrooms(ctx context.Context, date model.Date, slot model.Interval) ([]*model.Classroom, error) {
	if err := validateQuery(date, slot); err != nil {
		return nil, err
	}

	classrooms, err := s.classrooms.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list classrooms", err)
	}

	occupiedIDs, err := s.repo.DistinctOccupiedClassrooms(ctx, date, slot, model.CommittedStatuses)
	if err != nil {
		s.cfg.Log.Error("Failed to search available classrooms", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to search available classrooms", err)
	}

	occupied := make(map[string]struct{}, len(occupiedIDs))
	for _, id := range occupiedIDs {
		occupied[id] = struct{}{}
	}

	available := make([]*model.Classroom, 0, len(classrooms))
	for _, classroom := range classrooms {
		if !classroom.Bookable() {
			continue
		}
		if _, taken := occupied[classroom.ID]; taken {
			continue
		}
		available = append(available, classroom)
	}

	s.cfg.Log.Debug("Classroom availability search completed",
		"date", date,
		"slot", slot.String(),
		"total", len(classrooms),
		"available", len(available),
	)
	return available, nil
}

func (s *availabilityService) ListOccupiedSlots(ctx context.Context, classroomID string, date model.Date) ([]*model.OccupiedSlot, error) {
	if classroomID == "" {
		return nil, apperrors.InvalidInput("Classroom ID cannot be empty")
	}
	if !date.Valid() {
		return nil, apperrors.InvalidInput("Date must be a valid YYYY-MM-DD value")
	}

	if _, err := s.classrooms.FindByID(ctx, classroomID); err != nil {
		if errors.Is(err, classroomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Classroom", classroomID)
		}
		return nil, apperrors.Internal("Failed to look up classroom", err)
	}

	reservations, err := s.repo.FindByClassroomAndDate(ctx, classroomID, date, model.ActiveStatuses)
	if err != nil {
		return nil, apperrors.Internal("Failed to list occupied slots", err)
	}

	slots := make([]*model.OccupiedSlot, 0, len(reservations))
	for _, r := range reservations {
		slots = append(slots, &model.OccupiedSlot{
			Slot:    r.Slot,
			Purpose: r.Purpose,
			Status:  r.Status,
		})
	}
	return slots, nil
}

func validateQuery(date model.Date, slot model.Interval) error {
	if !date.Valid() {
		return apperrors.InvalidInput("Date must be a valid YYYY-MM-DD value")
	}
	if !slot.Valid() {
		return apperrors.InvalidInput("Slot must be a non-empty range within a single day")
	}
	return nil
}
