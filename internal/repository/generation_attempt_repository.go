package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/timetable-api/internal/models"
)

// GenerationAttemptRepository records generation runs for strategy selection.
type GenerationAttemptRepository struct {
	db *sqlx.DB
}

// NewGenerationAttemptRepository creates a new attempt repository.
func NewGenerationAttemptRepository(db *sqlx.DB) *GenerationAttemptRepository {
	return &GenerationAttemptRepository{db: db}
}

// Insert stores one attempt record.
func (r *GenerationAttemptRepository) Insert(ctx context.Context, attempt *models.GenerationAttempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt payload is nil")
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO generation_attempts (id, method, duration_ms, success, entries_generated, conflicts_count, error_message, academic_year, semester, created_at)
VALUES (:id, :method, :duration_ms, :success, :entries_generated, :conflicts_count, :error_message, :academic_year, :semester, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return fmt.Errorf("insert generation attempt: %w", err)
	}
	return nil
}

// AggregateByMethod computes per-strategy performance metrics over all runs.
func (r *GenerationAttemptRepository) AggregateByMethod(ctx context.Context) ([]models.MethodMetrics, error) {
	const query = `
SELECT method,
       AVG(CASE WHEN success THEN 1.0 ELSE 0.0 END) AS success_rate,
       AVG(duration_ms)                              AS avg_duration_ms,
       AVG(conflicts_count)                          AS avg_conflicts,
       AVG(entries_generated)                        AS avg_entries,
       COUNT(*)                                      AS total_attempts
FROM generation_attempts
GROUP BY method`
	var metrics []models.MethodMetrics
	if err := r.db.SelectContext(ctx, &metrics, query); err != nil {
		return nil, fmt.Errorf("aggregate generation attempts: %w", err)
	}
	return metrics, nil
}

// RecentFailures counts failed runs of a method for the term inside the
// lookback window.
func (r *GenerationAttemptRepository) RecentFailures(ctx context.Context, method models.GenerationMethod, academicYear string, semester models.Semester, since time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM generation_attempts
WHERE method = $1 AND academic_year = $2 AND semester = $3 AND success = FALSE AND created_at >= $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, method, academicYear, semester, since); err != nil {
		return 0, fmt.Errorf("count recent failures: %w", err)
	}
	return count, nil
}
