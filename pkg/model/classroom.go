package model

// BaseStatus is the administrative availability flag of a classroom. Only
// admins change it; it is independent of bookings.
type BaseStatus string

const (
	ClassroomAvailable   BaseStatus = "Available"
	ClassroomUnavailable BaseStatus = "Unavailable"
)

// Classroom is a bookable room in the catalog.
type Classroom struct {
	ID         string     `json:"id" bson:"_id"`
	Name       string     `json:"name" bson:"room_name"`
	Building   string     `json:"building" bson:"building"`
	Capacity   int        `json:"capacity" bson:"capacity"`
	BaseStatus BaseStatus `json:"base_status" bson:"base_status"`
}

// Bookable reports whether the room is administratively open for booking.
func (c *Classroom) Bookable() bool {
	return c.BaseStatus == ClassroomAvailable
}
