package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// ConflictRepository persists detected scheduling conflicts.
type ConflictRepository struct {
	db *sqlx.DB
}

// NewConflictRepository creates a new conflict repository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

const conflictColumns = `id, first_entry_id, second_entry_id, type, description, resolved, academic_year, semester, created_at`

// BulkCreateWithTx inserts conflict records inside the commit transaction.
func (r *ConflictRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, conflicts []models.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	const query = `
INSERT INTO conflicts (id, first_entry_id, second_entry_id, type, description, resolved, academic_year, semester, created_at)
VALUES (:id, :first_entry_id, :second_entry_id, :type, :description, :resolved, :academic_year, :semester, :created_at)`
	now := time.Now().UTC()
	for i := range conflicts {
		if conflicts[i].ID == "" {
			conflicts[i].ID = uuid.NewString()
		}
		conflicts[i].CreatedAt = now
	}
	if _, err := tx.NamedExecContext(ctx, query, conflicts); err != nil {
		return fmt.Errorf("bulk insert conflicts: %w", err)
	}
	return nil
}

// DeleteByTermTx clears the term's conflicts inside the commit transaction.
func (r *ConflictRepository) DeleteByTermTx(ctx context.Context, tx *sqlx.Tx, academicYear string, semester models.Semester) error {
	const query = `DELETE FROM conflicts WHERE academic_year = $1 AND semester = $2`
	if _, err := tx.ExecContext(ctx, query, academicYear, semester); err != nil {
		return fmt.Errorf("delete conflicts for term: %w", err)
	}
	return nil
}

// ListByTerm returns conflicts for the term, optionally only unresolved ones.
func (r *ConflictRepository) ListByTerm(ctx context.Context, academicYear string, semester models.Semester, onlyUnresolved bool) ([]models.Conflict, error) {
	query := fmt.Sprintf(`SELECT %s FROM conflicts WHERE academic_year = $1 AND semester = $2`, conflictColumns)
	if onlyUnresolved {
		query += ` AND resolved = FALSE`
	}
	query += ` ORDER BY created_at, id`
	var conflicts []models.Conflict
	if err := r.db.SelectContext(ctx, &conflicts, query, academicYear, semester); err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	return conflicts, nil
}

// FindByID loads one conflict record.
func (r *ConflictRepository) FindByID(ctx context.Context, id string) (*models.Conflict, error) {
	query := fmt.Sprintf(`SELECT %s FROM conflicts WHERE id = $1`, conflictColumns)
	var conflict models.Conflict
	if err := r.db.GetContext(ctx, &conflict, query, id); err != nil {
		return nil, err
	}
	return &conflict, nil
}

// MarkResolved flips the resolved flag.
func (r *ConflictRepository) MarkResolved(ctx context.Context, id string) error {
	const query = `UPDATE conflicts SET resolved = TRUE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("resolve conflict: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve conflict rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("conflict %s not found", id)
	}
	return nil
}

// CountUnresolvedForEntry reports how many open conflicts still reference the
// entry, used to decide whether its summary flag can be cleared.
func (r *ConflictRepository) CountUnresolvedForEntry(ctx context.Context, entryID string) (int, error) {
	const query = `SELECT COUNT(*) FROM conflicts WHERE resolved = FALSE AND (first_entry_id = $1 OR second_entry_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, entryID); err != nil {
		return 0, fmt.Errorf("count unresolved conflicts: %w", err)
	}
	return count, nil
}
