package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// It is stored as a plain integer and rendered as "HH:MM" over JSON.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses a "HH:MM" string into minutes since midnight.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// TimeOfDayAt extracts the wall-clock minute of the given instant.
func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a calendar date in "YYYY-MM-DD" form. The ISO layout keeps
// lexicographic and chronological ordering identical, so dates compare
// correctly as strings both in Go and in store queries.
type Date string

const dateLayout = "2006-01-02"

// ParseDate validates a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateAt extracts the calendar date of the given instant.
func DateAt(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

func (d Date) Before(other Date) bool {
	return string(d) < string(other)
}

func (d Date) String() string {
	return string(d)
}

// Interval is a half-open time range [Start, End) within a single day.
type Interval struct {
	Start TimeOfDay `json:"start_time" bson:"start_minute"`
	End   TimeOfDay `json:"end_time" bson:"end_minute"`
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries (one ends exactly where the other starts) do not overlap.
// Every availability decision in the engine routes through this predicate.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Valid reports whether the interval is well-formed: both endpoints are
// within the day and the range is non-empty.
func (i Interval) Valid() bool {
	return i.Start.Valid() && i.End.Valid() && i.Start < i.End
}

// Contains reports whether the given wall-clock minute falls inside the
// half-open range.
func (i Interval) Contains(t TimeOfDay) bool {
	return i.Start <= t && t < i.End
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start, i.End)
}
