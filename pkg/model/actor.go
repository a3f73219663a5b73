package model

// Role is the caller's authorization role. Authentication happens outside
// the engine; callers arrive with an already-verified user id and role.
type Role string

const (
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleFaculty || r == RoleAdmin || r == RoleStudent
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   Role
}

// CanReserve reports whether the actor may create reservations. Booking
// is a faculty action; admins approve rather than book.
func (a Actor) CanReserve() bool {
	return a.Role == RoleFaculty
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor is the owner of the given reservation.
func (a Actor) Owns(r *Reservation) bool {
	return r != nil && a.UserID == r.UserID
}
