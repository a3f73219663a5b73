package model

import "time"

// Reservation lifecycle actions published on the event stream and recorded
// in the activity log.
const (
	ActionCreated   = "reservation.created"
	ActionApproved  = "reservation.approved"
	ActionRejected  = "reservation.rejected"
	ActionCancelled = "reservation.cancelled"
	ActionUpdated   = "reservation.updated"
	ActionSwept     = "reservation.swept"
)

// ReservationEvent is the payload published after a successful mutation.
type ReservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	ClassroomID   string    `json:"classroom_id"`
	UserID        string    `json:"user_id"`
	Action        string    `json:"action"`
	Date          Date      `json:"date,omitempty"`
	Slot          *Interval `json:"slot,omitempty"`
	Status        Status    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ActivityLog is a persisted record of a user-visible action, written by
// the event consumer.
type ActivityLog struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Action    string    `bson:"action" json:"action"`
	Details   string    `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
