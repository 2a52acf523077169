package models

import "time"

// TimetableEntry is the atomic assignment unit: one course placed in a
// (room, lecturer, day, slot) tuple for a given term. ConflictType is a
// non-authoritative summary hint; the conflicts table is the source of truth.
type TimetableEntry struct {
	ID           string       `db:"id" json:"id"`
	CourseID     string       `db:"course_id" json:"course_id"`
	RoomID       string       `db:"room_id" json:"room_id"`
	LecturerID   string       `db:"lecturer_id" json:"lecturer_id"`
	Day          DayOfWeek    `db:"day" json:"day"`
	TimeSlotID   string       `db:"time_slot_id" json:"time_slot_id"`
	AcademicYear string       `db:"academic_year" json:"academic_year"`
	Semester     Semester     `db:"semester" json:"semester"`
	HasConflict  bool         `db:"has_conflict" json:"has_conflict"`
	ConflictType ConflictType `db:"conflict_type" json:"conflict_type,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// TermKey identifies the scope of one generation run.
type TermKey struct {
	AcademicYear string   `json:"academic_year"`
	Semester     Semester `json:"semester"`
}
