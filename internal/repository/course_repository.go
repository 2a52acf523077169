package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// CourseRepository provides read access to course offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, code, name, department, year_level, credit_units, elective, enrollment_count, requires_lab, lecturer_id, prerequisites, created_at, updated_at`

// ListOffered returns every course offered in the requested term, ordered by
// code for deterministic generation runs.
func (r *CourseRepository) ListOffered(ctx context.Context, academicYear string, semester models.Semester) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE academic_year = $1 AND semester = $2 ORDER BY code`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list offered courses: %w", err)
	}
	return courses, nil
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
