// Package activity holds the domain model and the repository for the
// per-user activity collection.
package activity

import "time"

// TypeID identifies one of the fixed loggable event categories.
type TypeID int

const (
	TypeWorkout    TypeID = 1
	TypeStudy      TypeID = 2
	TypeMeditation TypeID = 3
)

// Types lists all categories in display order.
var Types = []TypeID{TypeWorkout, TypeStudy, TypeMeditation}

// Valid reports whether the id names a known category.
func (t TypeID) Valid() bool {
	return t >= TypeWorkout && t <= TypeMeditation
}

// Label is the display name of the category.
func (t TypeID) Label() string {
	switch t {
	case TypeWorkout:
		return "Workout"
	case TypeStudy:
		return "Study"
	case TypeMeditation:
		return "Meditation"
	default:
		return "Unknown"
	}
}

// Record is one logged activity. The id is assigned by the service; UserID
// always equals the authenticated user's id for every record the client is
// permitted to see.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TypeID     TypeID    `json:"activity_type_id"`
	RecordedAt time.Time `json:"recorded_at"`
}
