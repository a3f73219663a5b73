package service

import (
	"context"
	"fmt"

	"aula/internal/activity/repository"
	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/kafka"
	"aula/pkg/model"
)

// Recorder turns reservation events from the stream into persisted
// activity-log rows. It runs as the handler of the activity-logger
// consumer group.
type Recorder struct {
	repo repository.ActivityRepository
	cfg  *config.Config
}

func NewRecorder(repo repository.ActivityRepository, cfg *config.Config) *Recorder {
	return &Recorder{
		repo: repo,
		cfg:  cfg,
	}
}

// Handle implements kafka.MessageHandler.
func (r *Recorder) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		// Undecodable payloads are poison; returning a permanent error
		// sends them to the DLQ instead of blocking the partition.
		return fmt.Errorf("%w: %v", kafka.ErrPermanentFailure, err)
	}

	entry := &model.ActivityLog{
		UserID:    event.UserID,
		Action:    event.Action,
		Details:   describe(&event),
		CreatedAt: event.OccurredAt,
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.cfg.Log.Error("Failed to record activity",
			"reservation_id", event.ReservationID,
			"action", event.Action,
			"error", err,
		)
		return err
	}

	r.cfg.Log.Debug("Activity recorded",
		"user_id", event.UserID,
		"action", event.Action,
	)
	return nil
}

func describe(event *model.ReservationEvent) string {
	if event.Slot != nil {
		return fmt.Sprintf("reservation %s: classroom %s on %s %s",
			event.ReservationID, event.ClassroomID, event.Date, event.Slot)
	}
	return fmt.Sprintf("reservation %s: classroom %s on %s", event.ReservationID, event.ClassroomID, event.Date)
}

// ListByUser returns a user's activity, newest first. Users see their own
// history; admins see anyone's.
func (r *Recorder) ListByUser(ctx context.Context, actor model.Actor, userID string, limit int, offset int64) ([]*model.ActivityLog, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	if actor.UserID != userID && !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden("You may only view your own activity")
	}

	entries, err := r.repo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve activity logs", err)
	}
	count, err := r.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count activity logs", err)
	}
	return entries, count, nil
}
