package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// LecturerRepository provides read access to teaching staff.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository creates a new lecturer repository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// ListActive returns all lecturers available for scheduling, including their
// availability windows and load caps.
func (r *LecturerRepository) ListActive(ctx context.Context) ([]models.Lecturer, error) {
	const query = `SELECT id, user_id, name, department, max_courses, availability, active, created_at, updated_at
FROM lecturers WHERE active = TRUE ORDER BY name`
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query); err != nil {
		return nil, fmt.Errorf("list active lecturers: %w", err)
	}
	return lecturers, nil
}

// FindByID loads a lecturer by id.
func (r *LecturerRepository) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	const query = `SELECT id, user_id, name, department, max_courses, availability, active, created_at, updated_at FROM lecturers WHERE id = $1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		return nil, err
	}
	return &lecturer, nil
}
