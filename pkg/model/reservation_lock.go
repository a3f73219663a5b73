package model

import (
	"fmt"
	"time"
)

// ReservationLock is an advisory lock document serializing every
// read-then-write over a single (classroom, date) pair. The lock is held
// by inserting a document whose _id encodes the pair; a unique-index
// violation means another writer holds it. A TTL index on expires_at
// reclaims locks abandoned by crashed holders.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LockID builds the lock key for a classroom/date pair.
func LockID(classroomID string, date Date) string {
	return fmt.Sprintf("%s:%s", classroomID, date)
}
