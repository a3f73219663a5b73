// Package clock provides the injectable time source used by the status
// sweep and availability decisions. Production code uses the system clock;
// tests substitute a controllable implementation.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock backed by time.Now in the given location. The
// engine assumes a single timezone; loc defaults to time.Local when nil.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}
