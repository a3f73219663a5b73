package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrSlotConflict = errors.New("requested slot conflicts with an existing reservation")

	ErrLockHeld = errors.New("slot lock is held by another request")

	ErrStatusNotMatched = errors.New("reservation status did not match expected state")
)
