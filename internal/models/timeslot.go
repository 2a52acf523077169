package models

import "time"

// TimeSlot is one teaching period. StartTime and EndTime are "HH:MM" and
// slots are ordered by start time. The lunch period is a regular slot;
// working-hours boundaries come from policy configuration.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
