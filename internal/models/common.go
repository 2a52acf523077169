package models

// Pagination captures standard list metadata.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	TotalRows int `json:"total_rows"`
}

// DayOfWeek is an uppercase day name as stored with timetable entries.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
)

// WorkingDays is the ordered teaching week.
var WorkingDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday}

// Semester identifies a term within an academic year. 3 is the summer term.
type Semester int

const (
	SemesterFirst  Semester = 1
	SemesterSecond Semester = 2
	SemesterSummer Semester = 3
)

// Valid reports whether the semester is one of the known terms.
func (s Semester) Valid() bool {
	return s >= SemesterFirst && s <= SemesterSummer
}
