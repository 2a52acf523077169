package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type entryLister interface {
	ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
}

// TimetableService serves read access to committed schedules.
type TimetableService struct {
	entries entryLister
	logger  *zap.Logger
}

func NewTimetableService(entries entryLister, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{entries: entries, logger: logger}
}

// ListByTerm returns the committed schedule for one term, empty when none
// has been generated yet.
func (s *TimetableService) ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.TimetableEntry, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1, 2 or 3")
	}
	entries, err := s.entries.ListByTerm(ctx, academicYear, semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.TimetableEntry{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	return entries, nil
}

// Get returns a single entry by id.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.TimetableEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}
	return entry, nil
}
