package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Course is an offered unit of teaching, immutable during a generation run.
type Course struct {
	ID              string         `db:"id" json:"id"`
	Code            string         `db:"code" json:"code"`
	Name            string         `db:"name" json:"name"`
	Department      string         `db:"department" json:"department"`
	YearLevel       int            `db:"year_level" json:"year_level"`
	CreditUnits     int            `db:"credit_units" json:"credit_units"`
	Elective        bool           `db:"elective" json:"elective"`
	EnrollmentCount int            `db:"enrollment_count" json:"enrollment_count"`
	RequiresLab     bool           `db:"requires_lab" json:"requires_lab"`
	LecturerID      *string        `db:"lecturer_id" json:"lecturer_id,omitempty"`
	Prerequisites   types.JSONText `db:"prerequisites" json:"prerequisites"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// PrerequisiteIDs decodes the stored prerequisite course references.
// Malformed or empty payloads decode to no prerequisites.
func (c Course) PrerequisiteIDs() []string {
	if len(c.Prerequisites) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(c.Prerequisites, &ids); err != nil {
		return nil
	}
	return ids
}
