package models

import "time"

// ConflictType names the kind of scheduling violation detected.
type ConflictType string

const (
	ConflictRoom         ConflictType = "ROOM"
	ConflictLecturer     ConflictType = "LECTURER"
	ConflictAvailability ConflictType = "AVAILABILITY"
	ConflictCapacity     ConflictType = "CAPACITY"
	ConflictMaxCourses   ConflictType = "MAX_COURSES"
	ConflictStudentGroup ConflictType = "STUDENT_GROUP"
	ConflictPrerequisite ConflictType = "PREREQUISITE"
	ConflictInvalidEntry ConflictType = "INVALID_ENTRY"
	ConflictManualReview ConflictType = "MANUAL_REVIEW"
)

// Conflict records one detected violation scoped to a term. It references
// two distinct entries, or a single entry for non-pair violations such as
// capacity shortfalls. Conflicts are data, never raised as errors.
type Conflict struct {
	ID            string       `db:"id" json:"id"`
	FirstEntryID  string       `db:"first_entry_id" json:"first_entry_id"`
	SecondEntryID *string      `db:"second_entry_id" json:"second_entry_id,omitempty"`
	Type          ConflictType `db:"type" json:"type"`
	Description   string       `db:"description" json:"description"`
	Resolved      bool         `db:"resolved" json:"resolved"`
	AcademicYear  string       `db:"academic_year" json:"academic_year"`
	Semester      Semester     `db:"semester" json:"semester"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}
