package scheduler

import "github.com/campushq/timetable-api/internal/models"

// Gene is one proposed placement: a course mapped to a room, lecturer, day
// and time slot. Fields are fixed at construction; there are no loose maps.
type Gene struct {
	CourseID   string
	RoomID     string
	LecturerID string
	Day        models.DayOfWeek
	SlotID     string
}

// Chromosome is a candidate timetable: exactly one gene per course, in the
// input course order. It only lives during search.
type Chromosome []Gene

// Clone returns an independent copy.
func (c Chromosome) Clone() Chromosome {
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}
