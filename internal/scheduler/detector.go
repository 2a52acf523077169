package scheduler

import (
	"fmt"

	"github.com/campushq/timetable-api/internal/models"
)

// Descriptor describes one detected conflict. FirstEntryID is the entry the
// conflict was discovered on ("" for an unsaved candidate assignment);
// SecondEntryID is the other participant when the violation is pairwise.
type Descriptor struct {
	FirstEntryID  string              `json:"first_entry_id,omitempty"`
	SecondEntryID *string             `json:"second_entry_id,omitempty"`
	Type          models.ConflictType `json:"type"`
	Description   string              `json:"description"`
}

// BatchResult is the outcome of validating a full candidate set. Flags maps
// entry ID to the first conflict type discovered for it; the descriptor list
// retains every conflict and is the source of truth.
type BatchResult struct {
	Descriptors []Descriptor
	Flags       map[string]models.ConflictType
}

// Detector finds scheduling violations. Conflicting data produces
// descriptors, never errors.
type Detector struct {
	snap *Snapshot
}

// NewDetector constructs a detector over a snapshot.
func NewDetector(snap *Snapshot) *Detector {
	return &Detector{snap: snap}
}

// CheckEntry runs incremental detection: the new or updated entry against
// existing entries sharing the same (day, slot, year, semester). Both a room
// and a lecturer collision may be reported, against different entries. It
// needs no snapshot, only the entries themselves.
func CheckEntry(entry models.TimetableEntry, existing []models.TimetableEntry) []Descriptor {
	var out []Descriptor
	for i := range existing {
		other := existing[i]
		if other.ID == entry.ID {
			continue
		}
		if other.Day != entry.Day || other.TimeSlotID != entry.TimeSlotID {
			continue
		}
		if other.AcademicYear != entry.AcademicYear || other.Semester != entry.Semester {
			continue
		}
		if other.RoomID == entry.RoomID {
			id := other.ID
			out = append(out, Descriptor{
				FirstEntryID:  entry.ID,
				SecondEntryID: &id,
				Type:          models.ConflictRoom,
				Description:   fmt.Sprintf("room %s double-booked on %s slot %s", entry.RoomID, entry.Day, entry.TimeSlotID),
			})
		}
		if other.LecturerID == entry.LecturerID {
			id := other.ID
			out = append(out, Descriptor{
				FirstEntryID:  entry.ID,
				SecondEntryID: &id,
				Type:          models.ConflictLecturer,
				Description:   fmt.Sprintf("lecturer %s double-booked on %s slot %s", entry.LecturerID, entry.Day, entry.TimeSlotID),
			})
		}
	}
	return out
}

// DetectBatch validates a full generated timetable before commit, walking
// entries in input order. Running (day, slot) buckets catch room and
// lecturer pairs: the first occupant wins and later collisions are flagged
// against it. All applicable types are reported independently; an entry's
// summary flag carries only the first type found for it.
func (d *Detector) DetectBatch(entries []models.TimetableEntry) BatchResult {
	result := BatchResult{Flags: make(map[string]models.ConflictType)}

	type bucketKey struct {
		day  models.DayOfWeek
		slot string
	}
	roomBuckets := make(map[bucketKey]map[string]string)     // (day,slot) -> room -> first entry id
	lecturerBuckets := make(map[bucketKey]map[string]string) // (day,slot) -> lecturer -> first entry id
	dailyCount := make(map[dayLoadKey]int)

	add := func(desc Descriptor) {
		result.Descriptors = append(result.Descriptors, desc)
		if desc.FirstEntryID != "" {
			if _, seen := result.Flags[desc.FirstEntryID]; !seen {
				result.Flags[desc.FirstEntryID] = desc.Type
			}
		}
		if desc.SecondEntryID != nil {
			if _, seen := result.Flags[*desc.SecondEntryID]; !seen {
				result.Flags[*desc.SecondEntryID] = desc.Type
			}
		}
	}

	for i := range entries {
		entry := entries[i]
		course, courseOK := d.snap.Course(entry.CourseID)
		room, roomOK := d.snap.Room(entry.RoomID)
		lecturer, lecturerOK := d.snap.Lecturer(entry.LecturerID)
		slot, slotOK := d.snap.Slot(entry.TimeSlotID)
		if !courseOK || !roomOK || !lecturerOK || !slotOK {
			add(Descriptor{
				FirstEntryID: entry.ID,
				Type:         models.ConflictInvalidEntry,
				Description:  fmt.Sprintf("entry %s references a missing course, room, lecturer or slot", entry.ID),
			})
			continue
		}

		if room.Capacity < course.EnrollmentCount {
			add(Descriptor{
				FirstEntryID: entry.ID,
				Type:         models.ConflictCapacity,
				Description:  fmt.Sprintf("room %s capacity %d below %s enrollment %d", room.Name, room.Capacity, course.Code, course.EnrollmentCount),
			})
		}

		if !d.snap.LecturerAvailable(lecturer, entry.Day, slot) {
			add(Descriptor{
				FirstEntryID: entry.ID,
				Type:         models.ConflictAvailability,
				Description:  fmt.Sprintf("lecturer %s unavailable on %s %s-%s", lecturer.Name, entry.Day, slot.StartTime, slot.EndTime),
			})
		}

		dailyCount[dayLoadKey{entry.LecturerID, entry.Day}]++
		if max := d.snap.Policy.MaxCoursesPerDay; max > 0 && dailyCount[dayLoadKey{entry.LecturerID, entry.Day}] > max {
			add(Descriptor{
				FirstEntryID: entry.ID,
				Type:         models.ConflictMaxCourses,
				Description:  fmt.Sprintf("lecturer %s exceeds %d courses on %s", lecturer.Name, max, entry.Day),
			})
		}

		key := bucketKey{entry.Day, entry.TimeSlotID}
		if roomBuckets[key] == nil {
			roomBuckets[key] = make(map[string]string)
		}
		if firstID, taken := roomBuckets[key][entry.RoomID]; taken {
			id := firstID
			add(Descriptor{
				FirstEntryID:  entry.ID,
				SecondEntryID: &id,
				Type:          models.ConflictRoom,
				Description:   fmt.Sprintf("room %s double-booked on %s slot %s", room.Name, entry.Day, slot.Label),
			})
		} else {
			roomBuckets[key][entry.RoomID] = entry.ID
		}

		if lecturerBuckets[key] == nil {
			lecturerBuckets[key] = make(map[string]string)
		}
		if firstID, taken := lecturerBuckets[key][entry.LecturerID]; taken {
			id := firstID
			add(Descriptor{
				FirstEntryID:  entry.ID,
				SecondEntryID: &id,
				Type:          models.ConflictLecturer,
				Description:   fmt.Sprintf("lecturer %s double-booked on %s slot %s", lecturer.Name, entry.Day, slot.Label),
			})
		} else {
			lecturerBuckets[key][entry.LecturerID] = entry.ID
		}
	}

	return result
}

// ValidateAssignment checks one administrative placement against the
// existing entries of the same term using true interval overlap
// (startA < endB and endA > startB), including student-group and
// prerequisite rules. ok is true when no descriptor was produced.
func (d *Detector) ValidateAssignment(courseID, roomID, lecturerID string, day models.DayOfWeek, slotID string, existing []models.TimetableEntry) (bool, []Descriptor) {
	course, courseOK := d.snap.Course(courseID)
	room, roomOK := d.snap.Room(roomID)
	lecturer, lecturerOK := d.snap.Lecturer(lecturerID)
	slot, slotOK := d.snap.Slot(slotID)
	if !courseOK || !roomOK || !lecturerOK || !slotOK {
		return false, []Descriptor{{
			Type:        models.ConflictInvalidEntry,
			Description: "assignment references a missing course, room, lecturer or slot",
		}}
	}

	var out []Descriptor

	if room.Capacity < course.EnrollmentCount {
		out = append(out, Descriptor{
			Type:        models.ConflictCapacity,
			Description: fmt.Sprintf("room %s capacity %d below %s enrollment %d", room.Name, room.Capacity, course.Code, course.EnrollmentCount),
		})
	}

	if !d.snap.LecturerAvailable(lecturer, day, slot) {
		out = append(out, Descriptor{
			Type:        models.ConflictAvailability,
			Description: fmt.Sprintf("lecturer %s unavailable on %s %s-%s", lecturer.Name, day, slot.StartTime, slot.EndTime),
		})
	}

	slotStart := MinuteOfDay(slot.StartTime)
	slotEnd := MinuteOfDay(slot.EndTime)
	for i := range existing {
		other := existing[i]
		if other.Day != day {
			continue
		}
		otherSlot, ok := d.snap.Slot(other.TimeSlotID)
		if !ok {
			continue
		}
		if !Overlaps(slotStart, slotEnd, MinuteOfDay(otherSlot.StartTime), MinuteOfDay(otherSlot.EndTime)) {
			continue
		}
		id := other.ID
		if other.RoomID == roomID {
			out = append(out, Descriptor{
				SecondEntryID: &id,
				Type:          models.ConflictRoom,
				Description:   fmt.Sprintf("room %s already booked during %s %s-%s", room.Name, day, slot.StartTime, slot.EndTime),
			})
		}
		if other.LecturerID == lecturerID {
			out = append(out, Descriptor{
				SecondEntryID: &id,
				Type:          models.ConflictLecturer,
				Description:   fmt.Sprintf("lecturer %s already teaching during %s %s-%s", lecturer.Name, day, slot.StartTime, slot.EndTime),
			})
		}
		if otherCourse, ok := d.snap.Course(other.CourseID); ok {
			if otherCourse.ID != course.ID && otherCourse.Department == course.Department && otherCourse.YearLevel == course.YearLevel {
				out = append(out, Descriptor{
					SecondEntryID: &id,
					Type:          models.ConflictStudentGroup,
					Description:   fmt.Sprintf("%s clashes with %s for %s year %d students", course.Code, otherCourse.Code, course.Department, course.YearLevel),
				})
			}
		}
	}

	// Prerequisites are checked by existence in the schedule, not by time
	// ordering.
	scheduled := make(map[string]bool, len(existing))
	for i := range existing {
		scheduled[existing[i].CourseID] = true
	}
	for _, prereqID := range course.PrerequisiteIDs() {
		if !scheduled[prereqID] {
			prereqCode := prereqID
			if prereq, ok := d.snap.Course(prereqID); ok {
				prereqCode = prereq.Code
			}
			out = append(out, Descriptor{
				Type:        models.ConflictPrerequisite,
				Description: fmt.Sprintf("prerequisite %s of %s is not scheduled", prereqCode, course.Code),
			})
		}
	}

	return len(out) == 0, out
}
