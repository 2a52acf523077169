package scheduler

// Weights are the penalty and bonus values applied per entry during fitness
// evaluation. They are configuration, exposed for tuning and tests.
type Weights struct {
	Base               float64
	RoomClash          float64
	LecturerClash      float64
	DailyLoadOver      float64
	CapacityShort      float64
	DepartmentMismatch float64
	OutsideWindow      float64
	WithinWindowBonus  float64
	MissingReference   float64
}

// DefaultWeights returns the standard scoring profile.
func DefaultWeights() Weights {
	return Weights{
		Base:               1000,
		RoomClash:          50,
		LecturerClash:      50,
		DailyLoadOver:      30,
		CapacityShort:      20,
		DepartmentMismatch: 10,
		OutsideWindow:      40,
		WithinWindowBonus:  5,
		MissingReference:   100,
	}
}

// Evaluator scores candidate timetables. Score is a pure function of the
// chromosome and the snapshot: no I/O, no shared mutable state, so it may be
// called concurrently.
type Evaluator struct {
	snap    *Snapshot
	weights Weights
}

// NewEvaluator constructs an evaluator over a snapshot.
func NewEvaluator(snap *Snapshot, weights Weights) *Evaluator {
	return &Evaluator{snap: snap, weights: weights}
}

// Score starts from the base score and subtracts weighted penalties summed
// over all genes, flooring at zero. Higher is better. Lookup failures are
// scored, not raised: the search keeps optimizing through bad data.
func (e *Evaluator) Score(chromosome Chromosome) float64 {
	roomUse := make(map[occupancyKey]int, len(chromosome))
	lecturerUse := make(map[occupancyKey]int, len(chromosome))
	dailyLoad := make(map[dayLoadKey]int, len(chromosome))
	for _, gene := range chromosome {
		roomUse[occupancyKey{gene.RoomID, gene.Day, gene.SlotID}]++
		lecturerUse[occupancyKey{gene.LecturerID, gene.Day, gene.SlotID}]++
		dailyLoad[dayLoadKey{gene.LecturerID, gene.Day}]++
	}

	score := e.weights.Base
	for _, gene := range chromosome {
		course, courseOK := e.snap.Course(gene.CourseID)
		room, roomOK := e.snap.Room(gene.RoomID)
		lecturer, lecturerOK := e.snap.Lecturer(gene.LecturerID)
		slot, slotOK := e.snap.Slot(gene.SlotID)
		if !courseOK || !roomOK || !lecturerOK || !slotOK {
			score -= e.weights.MissingReference
			continue
		}

		if roomUse[occupancyKey{gene.RoomID, gene.Day, gene.SlotID}] > 1 {
			score -= e.weights.RoomClash
		}
		if lecturerUse[occupancyKey{gene.LecturerID, gene.Day, gene.SlotID}] > 1 {
			score -= e.weights.LecturerClash
		}
		if max := e.snap.Policy.MaxCoursesPerDay; max > 0 && dailyLoad[dayLoadKey{gene.LecturerID, gene.Day}] > max {
			score -= e.weights.DailyLoadOver
		}
		if room.Capacity < course.EnrollmentCount {
			score -= e.weights.CapacityShort
		}
		if room.Department != nil && *room.Department != "" && *room.Department != course.Department {
			score -= e.weights.DepartmentMismatch
		}
		if lecturer.Department != course.Department {
			score -= e.weights.DepartmentMismatch
		}
		if e.snap.LecturerAvailable(lecturer, gene.Day, slot) {
			score += e.weights.WithinWindowBonus
		} else {
			score -= e.weights.OutsideWindow
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
