package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	classroomserrors "aula/internal/classrooms/errors"
	reservationserrors "aula/internal/reservations/errors"
	"aula/internal/reservations/repository"
	"aula/internal/reservations/validator"
	"aula/pkg/clock"
	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/model"
	"aula/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// ClassroomCatalog is the slice of the classroom domain the reservation
// engine needs: existence checks and the full room list.
type ClassroomCatalog interface {
	FindByID(ctx context.Context, id string) (*model.Classroom, error)
	FindAll(ctx context.Context) ([]*model.Classroom, error)
}

type ReservationService interface {
	Create(ctx context.Context, actor model.Actor, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByUser(ctx context.Context, actor model.Actor, userID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	Approve(ctx context.Context, actor model.Actor, id string) error
	Reject(ctx context.Context, actor model.Actor, id string) error
	Cancel(ctx context.Context, actor model.Actor, id string) error
	Update(ctx context.Context, actor model.Actor, id string, updates *model.ReservationUpdate) error
}

type reservationService struct {
	repo       repository.ReservationRepository
	lockRepo   repository.ReservationLockRepository
	classrooms ClassroomCatalog
	validator  *validator.ReservationValidator
	publisher  EventPublisher
	clock      clock.Clock
	cfg        *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	classrooms ClassroomCatalog,
	validator *validator.ReservationValidator,
	publisher EventPublisher,
	clk clock.Clock,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:       repo,
		lockRepo:   lockRepo,
		classrooms: classrooms,
		validator:  validator,
		publisher:  publisher,
		clock:      clk,
		cfg:        cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, actor model.Actor, reservation *model.Reservation) error {
	if !actor.CanReserve() {
		return apperrors.Forbidden("Only faculty members can create reservations")
	}

	reservation.ID = ""
	reservation.UserID = actor.UserID
	reservation.Status = model.StatusPending
	s.sanitize(reservation)

	if err := s.validate(reservation); err != nil {
		return err
	}
	if err := s.rejectPastSlot(reservation.Date, reservation.Slot); err != nil {
		return err
	}
	if err := s.requireBookableClassroom(ctx, reservation.ClassroomID); err != nil {
		return err
	}

	// Serialize with concurrent writers on the same classroom-day before
	// the availability check, so check-then-insert is atomic.
	lockID, err := s.acquireSlotLock(ctx, reservation.ClassroomID, reservation.Date)
	if err != nil {
		return err
	}

	txErr := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, reservation, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})

	s.releaseSlotLock(ctx, lockID)

	if txErr != nil {
		s.cfg.Log.Error("Failed to create reservation", "error", txErr)
		return txErr
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"classroom_id", reservation.ClassroomID,
		"user_id", reservation.UserID,
		"date", reservation.Date,
		"slot", reservation.Slot.String(),
	)

	s.publisher.Publish(ctx, &model.ReservationEvent{
		ReservationID: reservation.ID,
		ClassroomID:   reservation.ClassroomID,
		UserID:        reservation.UserID,
		Action:        model.ActionCreated,
		Date:          reservation.Date,
		Slot:          &reservation.Slot,
		Status:        reservation.Status,
	})
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Only administrators can list all reservations")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByUser(ctx context.Context, actor model.Actor, userID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	if actor.UserID != userID && !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden("You may only list your own reservations")
	}

	reservations, err := s.repo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations by user", "user_id", userID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve reservations", err)
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to count reservations by user", "user_id", userID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count reservations", err)
	}

	return reservations, count, nil
}

func (s *reservationService) Approve(ctx context.Context, actor model.Actor, id string) error {
	return s.review(ctx, actor, id, model.StatusApproved, model.ActionApproved)
}

func (s *reservationService) Reject(ctx context.Context, actor model.Actor, id string) error {
	return s.review(ctx, actor, id, model.StatusRejected, model.ActionRejected)
}

// review applies an admin decision on a pending reservation. The status
// update is conditional on the reservation still being pending, so two
// concurrent decisions cannot both take effect.
func (s *reservationService) review(ctx context.Context, actor model.Actor, id string, to model.Status, action string) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only administrators can review reservations")
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !reservation.Status.CanTransition(to) {
		return s.invalidTransition(reservation, to)
	}

	if err := s.transition(ctx, reservation, []model.Status{model.StatusPending}, to); err != nil {
		return err
	}

	s.cfg.Log.Info("Reservation reviewed",
		"id", id,
		"status", to,
		"reviewed_by", actor.UserID,
	)

	s.publisher.Publish(ctx, &model.ReservationEvent{
		ReservationID: reservation.ID,
		ClassroomID:   reservation.ClassroomID,
		UserID:        reservation.UserID,
		Action:        action,
		Date:          reservation.Date,
		Status:        to,
	})
	return nil
}

func (s *reservationService) Cancel(ctx context.Context, actor model.Actor, id string) error {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(reservation) && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the reservation owner or an administrator can cancel it")
	}
	if !reservation.Status.CanTransition(model.StatusCancelled) {
		return s.invalidTransition(reservation, model.StatusCancelled)
	}

	from := []model.Status{model.StatusPending, model.StatusApproved}
	if err := s.transition(ctx, reservation, from, model.StatusCancelled); err != nil {
		return err
	}

	s.cfg.Log.Info("Reservation cancelled", "id", id, "cancelled_by", actor.UserID)

	s.publisher.Publish(ctx, &model.ReservationEvent{
		ReservationID: reservation.ID,
		ClassroomID:   reservation.ClassroomID,
		UserID:        reservation.UserID,
		Action:        model.ActionCancelled,
		Date:          reservation.Date,
		Status:        model.StatusCancelled,
	})
	return nil
}

func (s *reservationService) Update(ctx context.Context, actor model.Actor, id string, updates *model.ReservationUpdate) error {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(reservation) && !actor.IsAdmin() {
		return apperrors.Forbidden("Only the reservation owner or an administrator can edit it")
	}
	if reservation.Status != model.StatusPending && reservation.Status != model.StatusApproved {
		return apperrors.InvalidState(
			fmt.Sprintf("Reservation in status %q cannot be edited", reservation.Status),
			map[string]any{"id": id, "status": reservation.Status},
		)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(reservation, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}
	if err := s.rejectPastSlot(merged.Date, merged.Slot); err != nil {
		return err
	}

	lockID, err := s.acquireSlotLock(ctx, merged.ClassroomID, merged.Date)
	if err != nil {
		return err
	}

	txErr := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, merged, id); err != nil {
			return err
		}
		// An edit re-enters the review queue regardless of prior approval.
		if err := s.repo.UpdateSlot(sessCtx, id, merged.Date, merged.Slot, merged.Purpose, model.StatusPending); err != nil {
			if errors.Is(err, reservationserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", id)
			}
			return apperrors.Internal("Failed to update reservation", err)
		}
		return nil
	})

	s.releaseSlotLock(ctx, lockID)

	if txErr != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", txErr)
		return txErr
	}

	s.cfg.Log.Info("Reservation updated successfully", "id", id, "updated_by", actor.UserID)

	s.publisher.Publish(ctx, &model.ReservationEvent{
		ReservationID: id,
		ClassroomID:   merged.ClassroomID,
		UserID:        reservation.UserID,
		Action:        model.ActionUpdated,
		Date:          merged.Date,
		Slot:          &merged.Slot,
		Status:        model.StatusPending,
	})
	return nil
}

// --- Helpers ---

func (s *reservationService) sanitize(r *model.Reservation) {
	r.Purpose = sanitizer.SanitizePurpose(r.Purpose)
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// rejectPastSlot refuses slots that already ended relative to the engine
// clock. Same-day reservations remain valid until their end time passes.
func (s *reservationService) rejectPastSlot(date model.Date, slot model.Interval) error {
	now := s.clock.Now()
	today := model.DateAt(now)

	if date.Before(today) {
		return apperrors.Validation("Reservation date is in the past", map[string]any{"date": date})
	}
	if date == today && slot.End <= model.TimeOfDayAt(now) {
		return apperrors.Validation("Reservation slot has already ended", map[string]any{
			"date": date,
			"slot": slot.String(),
		})
	}
	return nil
}

func (s *reservationService) requireBookableClassroom(ctx context.Context, classroomID string) error {
	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, classroomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Classroom", classroomID)
		}
		return apperrors.Internal("Failed to look up classroom", err)
	}
	if !classroom.Bookable() {
		return apperrors.Validation("Classroom is not available for booking", map[string]any{
			"classroom_id": classroomID,
			"base_status":  classroom.BaseStatus,
		})
	}
	return nil
}

func (s *reservationService) mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.Date != nil {
		merged.Date = *updates.Date
	}
	if updates.Slot != nil {
		merged.Slot = *updates.Slot
	}
	if updates.Purpose != nil {
		merged.Purpose = *updates.Purpose
	}

	return &merged
}

// verifyNoConflict enforces the booking-time occupancy rule: pending,
// approved and ongoing reservations all block an overlapping slot.
func (s *reservationService) verifyNoConflict(ctx context.Context, reservation *model.Reservation, excludeID string) error {
	existing, err := s.repo.FindOverlapping(ctx, reservation.ClassroomID, reservation.Date, reservation.Slot, model.ActiveStatuses, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	if len(existing) > 0 {
		first := existing[0]
		return apperrors.Conflict(fmt.Sprintf(
			"Requested slot overlaps an existing reservation (%s, status %s)",
			first.Slot, first.Status,
		))
	}
	return nil
}

// transition performs the conditional status update and maps a lost race
// to an invalid-state error reflecting the fresh status.
func (s *reservationService) transition(ctx context.Context, reservation *model.Reservation, from []model.Status, to model.Status) error {
	err := s.repo.UpdateStatus(ctx, reservation.ID, from, to)
	if err == nil {
		return nil
	}
	if errors.Is(err, reservationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Reservation", reservation.ID)
	}
	if errors.Is(err, reservationserrors.ErrStatusNotMatched) {
		fresh, findErr := s.repo.FindByID(ctx, reservation.ID)
		if findErr == nil {
			reservation.Status = fresh.Status
		}
		return s.invalidTransition(reservation, to)
	}
	return apperrors.Internal("Failed to update reservation status", err)
}

func (s *reservationService) invalidTransition(reservation *model.Reservation, to model.Status) error {
	return apperrors.InvalidState(
		fmt.Sprintf("Reservation cannot move from %q to %q", reservation.Status, to),
		map[string]any{
			"id":     reservation.ID,
			"status": reservation.Status,
			"target": to,
		},
	)
}

// acquireSlotLock takes the advisory lock for a classroom-day, retrying
// for up to LockAcquireTimeout while another request holds it. Times out
// with a retryable busy error rather than queueing indefinitely.
func (s *reservationService) acquireSlotLock(ctx context.Context, classroomID string, date model.Date) (string, error) {
	lockID := model.LockID(classroomID, date)
	deadline := time.Now().Add(s.cfg.LockAcquireTimeout)

	for {
		lock := &model.ReservationLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(s.cfg.LockTTL),
		}

		_, err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Internal("Failed to acquire reservation lock", err)
		}

		if time.Now().After(deadline) {
			return "", apperrors.Busy("This classroom and date are being modified by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Timeout("Request cancelled while waiting for reservation lock")
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

func (s *reservationService) releaseSlotLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", err)
	}
}
