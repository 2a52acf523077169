package models

import "time"

// GenerationMethod names a timetable generation strategy.
type GenerationMethod string

const (
	MethodAI      GenerationMethod = "ai"
	MethodGenetic GenerationMethod = "genetic"
)

// GenerationAttempt records one generation run for strategy selection.
type GenerationAttempt struct {
	ID               string           `db:"id" json:"id"`
	Method           GenerationMethod `db:"method" json:"method"`
	DurationMs       int64            `db:"duration_ms" json:"duration_ms"`
	Success          bool             `db:"success" json:"success"`
	EntriesGenerated int              `db:"entries_generated" json:"entries_generated"`
	ConflictsCount   int              `db:"conflicts_count" json:"conflicts_count"`
	ErrorMessage     *string          `db:"error_message" json:"error_message,omitempty"`
	AcademicYear     string           `db:"academic_year" json:"academic_year"`
	Semester         Semester         `db:"semester" json:"semester"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// MethodMetrics aggregates historical performance for one strategy.
type MethodMetrics struct {
	Method        GenerationMethod `db:"method" json:"method"`
	SuccessRate   float64          `db:"success_rate" json:"success_rate"`
	AvgDurationMs float64          `db:"avg_duration_ms" json:"avg_duration_ms"`
	AvgConflicts  float64          `db:"avg_conflicts" json:"avg_conflicts"`
	AvgEntries    float64          `db:"avg_entries" json:"avg_entries"`
	TotalAttempts int              `db:"total_attempts" json:"total_attempts"`
}
