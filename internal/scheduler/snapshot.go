package scheduler

import (
	"sort"
	"strconv"
	"strings"

	"github.com/campushq/timetable-api/internal/models"
)

// Policy carries institution-wide scheduling rules. Values are injected from
// configuration, never hard-coded.
type Policy struct {
	MaxCoursesPerDay int
	DayStart         string
	DayEnd           string
}

// Snapshot is the read-only domain state one generation run operates on.
// All stochastic components and the conflict detector share a single
// snapshot, so evaluation stays a pure function of (candidate, snapshot).
type Snapshot struct {
	Courses   []models.Course
	Rooms     []models.Room
	Lecturers []models.Lecturer
	Slots     []models.TimeSlot
	Days      []models.DayOfWeek
	Policy    Policy

	courseByID   map[string]models.Course
	courseByCode map[string]models.Course
	roomByID     map[string]models.Room
	lecturerByID map[string]models.Lecturer
	slotByID     map[string]models.TimeSlot
}

// NewSnapshot builds lookup indexes and orders slots by start time.
func NewSnapshot(courses []models.Course, rooms []models.Room, lecturers []models.Lecturer, slots []models.TimeSlot, policy Policy) *Snapshot {
	ordered := make([]models.TimeSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return MinuteOfDay(ordered[i].StartTime) < MinuteOfDay(ordered[j].StartTime)
	})

	snap := &Snapshot{
		Courses:      courses,
		Rooms:        rooms,
		Lecturers:    lecturers,
		Slots:        ordered,
		Days:         models.WorkingDays,
		Policy:       policy,
		courseByID:   make(map[string]models.Course, len(courses)),
		courseByCode: make(map[string]models.Course, len(courses)),
		roomByID:     make(map[string]models.Room, len(rooms)),
		lecturerByID: make(map[string]models.Lecturer, len(lecturers)),
		slotByID:     make(map[string]models.TimeSlot, len(slots)),
	}
	for _, c := range courses {
		snap.courseByID[c.ID] = c
		snap.courseByCode[c.Code] = c
	}
	for _, r := range rooms {
		snap.roomByID[r.ID] = r
	}
	for _, l := range lecturers {
		snap.lecturerByID[l.ID] = l
	}
	for _, s := range ordered {
		snap.slotByID[s.ID] = s
	}
	return snap
}

// Course looks up a course by id.
func (s *Snapshot) Course(id string) (models.Course, bool) {
	c, ok := s.courseByID[id]
	return c, ok
}

// CourseByCode looks up a course by its code.
func (s *Snapshot) CourseByCode(code string) (models.Course, bool) {
	c, ok := s.courseByCode[strings.TrimSpace(code)]
	return c, ok
}

// Room looks up a room by id.
func (s *Snapshot) Room(id string) (models.Room, bool) {
	r, ok := s.roomByID[id]
	return r, ok
}

// Lecturer looks up a lecturer by id.
func (s *Snapshot) Lecturer(id string) (models.Lecturer, bool) {
	l, ok := s.lecturerByID[id]
	return l, ok
}

// Slot looks up a time slot by id.
func (s *Snapshot) Slot(id string) (models.TimeSlot, bool) {
	sl, ok := s.slotByID[id]
	return sl, ok
}

// LecturerAvailable reports whether the lecturer may teach during the slot on
// the given day. A lecturer without declared windows is available during all
// standard working hours. Containment rule: window.start <= slot.start and
// window.end >= slot.end.
func (s *Snapshot) LecturerAvailable(lecturer models.Lecturer, day models.DayOfWeek, slot models.TimeSlot) bool {
	windows := lecturer.AvailabilityWindows()
	if len(windows) == 0 {
		return true
	}
	slotStart := MinuteOfDay(slot.StartTime)
	slotEnd := MinuteOfDay(slot.EndTime)
	for _, w := range windows {
		if w.Day != day {
			continue
		}
		if MinuteOfDay(w.Start) <= slotStart && MinuteOfDay(w.End) >= slotEnd {
			return true
		}
	}
	return false
}

// MinuteOfDay parses an "HH:MM" clock string into minutes since midnight.
// Malformed input parses to 0 so scoring keeps going through bad data.
func MinuteOfDay(clock string) int {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return h*60 + m
}

// Overlaps reports true interval overlap: startA < endB and endA > startB.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
