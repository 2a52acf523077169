package dto

import (
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/scheduler"
)

// GenerateTimetableRequest asks for a full schedule for one term.
type GenerateTimetableRequest struct {
	AcademicYear string          `json:"academicYear" validate:"required"`
	Semester     models.Semester `json:"semester" validate:"required,min=1,max=3"`
}

// GenerationStats summarises what one run produced.
type GenerationStats struct {
	CoursesScheduled   int `json:"courses_scheduled"`
	RoomsUsed          int `json:"rooms_used"`
	LecturersAssigned  int `json:"lecturers_assigned"`
	TimeSlotsAvailable int `json:"time_slots_available"`
}

// GenerateTimetableResponse returns the committed schedule with its conflict
// report. Fitness and Generations are populated for genetic runs only.
type GenerateTimetableResponse struct {
	Method      models.GenerationMethod `json:"method"`
	Entries     []models.TimetableEntry `json:"entries"`
	Conflicts   []models.Conflict       `json:"conflicts"`
	Stats       GenerationStats         `json:"stats"`
	Fitness     *float64                `json:"fitness,omitempty"`
	Generations int                     `json:"generations,omitempty"`
}

// CheckEntryRequest is one new or updated entry to validate incrementally
// against the persisted schedule. EntryID is set on updates so the entry
// does not conflict with itself.
type CheckEntryRequest struct {
	EntryID      string           `json:"entryId"`
	CourseID     string           `json:"courseId" validate:"required"`
	RoomID       string           `json:"roomId" validate:"required"`
	LecturerID   string           `json:"lecturerId" validate:"required"`
	Day          models.DayOfWeek `json:"day" validate:"required"`
	TimeSlotID   string           `json:"timeSlotId" validate:"required"`
	AcademicYear string           `json:"academicYear" validate:"required"`
	Semester     models.Semester  `json:"semester" validate:"required,min=1,max=3"`
}

// ValidateAssignmentRequest is an administrative placement to validate with
// the richer overlap, student-group and prerequisite rules before saving.
type ValidateAssignmentRequest struct {
	CourseID     string           `json:"courseId" validate:"required"`
	RoomID       string           `json:"roomId" validate:"required"`
	LecturerID   string           `json:"lecturerId" validate:"required"`
	Day          models.DayOfWeek `json:"day" validate:"required"`
	TimeSlotID   string           `json:"timeSlotId" validate:"required"`
	AcademicYear string           `json:"academicYear" validate:"required"`
	Semester     models.Semester  `json:"semester" validate:"required,min=1,max=3"`
}

// ValidateAssignmentResponse reports whether the placement is acceptable and
// every rule it would break.
type ValidateAssignmentResponse struct {
	Valid     bool                   `json:"valid"`
	Conflicts []scheduler.Descriptor `json:"conflicts"`
}

// ConflictQuery filters the conflict list for a term.
type ConflictQuery struct {
	AcademicYear string          `form:"year" json:"year"`
	Semester     models.Semester `form:"semester" json:"semester"`
	Unresolved   bool            `form:"unresolved" json:"unresolved"`
}
