package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AvailabilityWindow is a (day, start, end) interval during which a lecturer
// may teach. Times are "HH:MM" strings matching time slot boundaries.
type AvailabilityWindow struct {
	Day   DayOfWeek `json:"day"`
	Start string    `json:"start"`
	End   string    `json:"end"`
}

// Lecturer is a member of teaching staff.
type Lecturer struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	Name         string         `db:"name" json:"name"`
	Department   string         `db:"department" json:"department"`
	MaxCourses   int            `db:"max_courses" json:"max_courses"`
	Availability types.JSONText `db:"availability" json:"availability"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// AvailabilityWindows decodes the stored availability. An empty result means
// the lecturer is available during all standard working hours.
func (l Lecturer) AvailabilityWindows() []AvailabilityWindow {
	if len(l.Availability) == 0 {
		return nil
	}
	var windows []AvailabilityWindow
	if err := json.Unmarshal(l.Availability, &windows); err != nil {
		return nil
	}
	return windows
}
