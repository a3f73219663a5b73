package model

import "time"

// Status is the lifecycle state of a reservation. It is persisted as one
// of a fixed set of strings; the store-side schema rejects anything else.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusOngoing   Status = "ongoing"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid persisted status value.
var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusOngoing,
	StatusDone,
	StatusCancelled,
}

// ActiveStatuses are the statuses that occupy a classroom slot: a
// reservation in any of these blocks a new booking for an overlapping
// interval.
var ActiveStatuses = []Status{StatusPending, StatusApproved, StatusOngoing}

// CommittedStatuses are the statuses that make a classroom unavailable in
// the broad room search. Pending holds are deliberately excluded there:
// a room counts as taken for discovery only once a hold is approved,
// while the single-room check at booking time also blocks on pending.
var CommittedStatuses = []Status{StatusApproved, StatusOngoing}

// transitions is the directed status graph. Terminal states have no
// outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusOngoing, StatusCancelled, StatusDone},
	StatusOngoing:  {StatusDone},
}

// Valid reports whether s is one of the persisted status values.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// CanTransition reports whether the status graph permits moving from s
// to the target status.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Reservation is a single classroom booking. Classroom and owner are
// immutable after creation; date, interval and purpose may change through
// an edit, which resets the status to pending. Reservations are never
// deleted: cancellation and rejection are status values.
type Reservation struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty"`
	ClassroomID string    `json:"classroom_id" bson:"classroom_id" validate:"required"`
	UserID      string    `json:"user_id" bson:"user_id" validate:"required"`
	Date        Date      `json:"date" bson:"date" validate:"required,calendar_date"`
	Slot        Interval  `json:"slot" bson:",inline"`
	Purpose     string    `json:"purpose" bson:"purpose" validate:"required,min=3,max=500"`
	Status      Status    `json:"status" bson:"status" validate:"omitempty,oneof=pending approved rejected ongoing done cancelled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReservationUpdate carries the editable fields of a reservation. A nil
// field keeps the current value.
type ReservationUpdate struct {
	Date    *Date     `json:"date,omitempty" validate:"omitempty,calendar_date"`
	Slot    *Interval `json:"slot,omitempty"`
	Purpose *string   `json:"purpose,omitempty" validate:"omitempty,min=3,max=500"`
}

// OccupiedSlot is the read-only projection of a reservation used for
// schedule displays.
type OccupiedSlot struct {
	Slot    Interval `json:"slot" bson:",inline"`
	Purpose string   `json:"purpose" bson:"purpose"`
	Status  Status   `json:"status" bson:"status"`
}
