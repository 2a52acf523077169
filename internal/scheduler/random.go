package scheduler

import (
	"math/rand"

	"github.com/campushq/timetable-api/internal/models"
)

type occupancyKey struct {
	id   string
	day  models.DayOfWeek
	slot string
}

type dayLoadKey struct {
	lecturer string
	day      models.DayOfWeek
}

// Generator builds random candidate timetables. The random source is
// injected so runs are reproducible under test.
type Generator struct {
	snap       *Snapshot
	rng        *rand.Rand
	retryLimit int
}

// NewGenerator constructs a generator. retryLimit bounds per-course attempts
// in the strict phase.
func NewGenerator(snap *Snapshot, rng *rand.Rand, retryLimit int) *Generator {
	if retryLimit <= 0 {
		retryLimit = 50
	}
	return &Generator{snap: snap, rng: rng, retryLimit: retryLimit}
}

// Generate builds one chromosome. In the strict phase (relax=false) room and
// lecturer candidates are filtered and placements must not collide; ok is
// false when any course exhausts its retry budget. With relax=true every
// filter and acceptance check is skipped, so generation always completes.
func (g *Generator) Generate(relax bool) (Chromosome, bool) {
	chromosome := make(Chromosome, 0, len(g.snap.Courses))
	roomBusy := make(map[occupancyKey]bool)
	lecturerBusy := make(map[occupancyKey]bool)
	dailyLoad := make(map[dayLoadKey]int)
	totalLoad := make(map[string]int)

	for _, course := range g.snap.Courses {
		gene, ok := g.placeCourse(course, relax, roomBusy, lecturerBusy, dailyLoad, totalLoad)
		if !ok {
			return nil, false
		}
		chromosome = append(chromosome, gene)
		roomBusy[occupancyKey{gene.RoomID, gene.Day, gene.SlotID}] = true
		lecturerBusy[occupancyKey{gene.LecturerID, gene.Day, gene.SlotID}] = true
		dailyLoad[dayLoadKey{gene.LecturerID, gene.Day}]++
		totalLoad[gene.LecturerID]++
	}
	return chromosome, true
}

// GenerateWithFallback runs the strict phase and, if it cannot place every
// course, restarts once in fully relaxed mode. The relaxed pass always
// terminates with a complete chromosome; conflict quality is left to the
// evaluator and detector.
func (g *Generator) GenerateWithFallback() Chromosome {
	if chromosome, ok := g.Generate(false); ok {
		return chromosome
	}
	chromosome, _ := g.Generate(true)
	return chromosome
}

func (g *Generator) placeCourse(course models.Course, relax bool, roomBusy, lecturerBusy map[occupancyKey]bool, dailyLoad map[dayLoadKey]int, totalLoad map[string]int) (Gene, bool) {
	rooms := g.CandidateRooms(course, relax)
	lecturers := g.CandidateLecturers(course, relax)
	if len(rooms) == 0 || len(lecturers) == 0 || len(g.snap.Slots) == 0 || len(g.snap.Days) == 0 {
		return Gene{}, false
	}

	attempts := g.retryLimit
	if relax {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		gene := Gene{
			CourseID:   course.ID,
			RoomID:     rooms[g.rng.Intn(len(rooms))].ID,
			LecturerID: lecturers[g.rng.Intn(len(lecturers))].ID,
			Day:        g.snap.Days[g.rng.Intn(len(g.snap.Days))],
			SlotID:     g.snap.Slots[g.rng.Intn(len(g.snap.Slots))].ID,
		}
		if relax {
			return gene, true
		}
		if roomBusy[occupancyKey{gene.RoomID, gene.Day, gene.SlotID}] {
			continue
		}
		if lecturerBusy[occupancyKey{gene.LecturerID, gene.Day, gene.SlotID}] {
			continue
		}
		if max := g.snap.Policy.MaxCoursesPerDay; max > 0 && dailyLoad[dayLoadKey{gene.LecturerID, gene.Day}] >= max {
			continue
		}
		if lecturer, ok := g.snap.Lecturer(gene.LecturerID); ok && lecturer.MaxCourses > 0 && totalLoad[gene.LecturerID] >= lecturer.MaxCourses {
			continue
		}
		return gene, true
	}
	return Gene{}, false
}

// CandidateRooms filters rooms by capacity, lab requirement and department
// affinity. relax=true returns every room.
func (g *Generator) CandidateRooms(course models.Course, relax bool) []models.Room {
	if relax {
		return g.snap.Rooms
	}
	var out []models.Room
	for _, room := range g.snap.Rooms {
		if !room.Active {
			continue
		}
		if room.Capacity < course.EnrollmentCount {
			continue
		}
		if course.RequiresLab && !room.Type.IsLab() {
			continue
		}
		if room.Department != nil && *room.Department != "" && *room.Department != course.Department {
			continue
		}
		out = append(out, room)
	}
	return out
}

// CandidateLecturers filters to the course's assigned lecturer or staff of
// the same department. relax=true returns every lecturer.
func (g *Generator) CandidateLecturers(course models.Course, relax bool) []models.Lecturer {
	if relax {
		return g.snap.Lecturers
	}
	var out []models.Lecturer
	for _, lecturer := range g.snap.Lecturers {
		if !lecturer.Active {
			continue
		}
		assigned := course.LecturerID != nil && *course.LecturerID == lecturer.ID
		if assigned || lecturer.Department == course.Department {
			out = append(out, lecturer)
		}
	}
	return out
}

// RandomDay picks a working day at random.
func (g *Generator) RandomDay() models.DayOfWeek {
	return g.snap.Days[g.rng.Intn(len(g.snap.Days))]
}

// RandomSlot picks a time slot at random.
func (g *Generator) RandomSlot() models.TimeSlot {
	return g.snap.Slots[g.rng.Intn(len(g.snap.Slots))]
}
