package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// TimetableEntryRepository persists committed timetable assignments.
type TimetableEntryRepository struct {
	db *sqlx.DB
}

// NewTimetableEntryRepository creates a new timetable entry repository.
func NewTimetableEntryRepository(db *sqlx.DB) *TimetableEntryRepository {
	return &TimetableEntryRepository{db: db}
}

func (r *TimetableEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const entryColumns = `id, course_id, room_id, lecturer_id, day, time_slot_id, academic_year, semester, has_conflict, conflict_type, created_at, updated_at`

// ListByTerm returns every entry for the term in insertion order.
func (r *TimetableEntryRepository) ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries WHERE academic_year = $1 AND semester = $2 ORDER BY created_at, id`, entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListBySlot returns entries occupying the given (day, slot) in the term,
// used by incremental conflict checks.
func (r *TimetableEntryRepository) ListBySlot(ctx context.Context, academicYear string, semester models.Semester, day models.DayOfWeek, slotID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries WHERE academic_year = $1 AND semester = $2 AND day = $3 AND time_slot_id = $4`, entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, academicYear, semester, day, slotID); err != nil {
		return nil, fmt.Errorf("list entries by slot: %w", err)
	}
	return entries, nil
}

// FindByID loads a single entry.
func (r *TimetableEntryRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries WHERE id = $1`, entryColumns)
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkCreateWithTx inserts generated entries inside the commit transaction.
// IDs and timestamps are assigned here so callers hand over bare assignments.
func (r *TimetableEntryRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const query = `
INSERT INTO timetable_entries (id, course_id, room_id, lecturer_id, day, time_slot_id, academic_year, semester, has_conflict, conflict_type, created_at, updated_at)
VALUES (:id, :course_id, :room_id, :lecturer_id, :day, :time_slot_id, :academic_year, :semester, :has_conflict, :conflict_type, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
	}
	if _, err := tx.NamedExecContext(ctx, query, entries); err != nil {
		return fmt.Errorf("bulk insert timetable entries: %w", err)
	}
	return nil
}

// DeleteByTermTx removes the term's prior schedule inside the commit
// transaction, keeping regeneration all-or-nothing.
func (r *TimetableEntryRepository) DeleteByTermTx(ctx context.Context, tx *sqlx.Tx, academicYear string, semester models.Semester) error {
	const query = `DELETE FROM timetable_entries WHERE academic_year = $1 AND semester = $2`
	if _, err := tx.ExecContext(ctx, query, academicYear, semester); err != nil {
		return fmt.Errorf("delete timetable entries for term: %w", err)
	}
	return nil
}

// UpdateConflictFlag sets the summary conflict markers on one entry.
func (r *TimetableEntryRepository) UpdateConflictFlag(ctx context.Context, exec sqlx.ExtContext, id string, hasConflict bool, conflictType models.ConflictType) error {
	const query = `UPDATE timetable_entries SET has_conflict = $1, conflict_type = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.exec(exec).ExecContext(ctx, query, hasConflict, conflictType, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update conflict flag: %w", err)
	}
	return nil
}
