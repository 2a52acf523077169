package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/scheduler"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type entryReader interface {
	ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.TimetableEntry, error)
	ListBySlot(ctx context.Context, academicYear string, semester models.Semester, day models.DayOfWeek, slotID string) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
	UpdateConflictFlag(ctx context.Context, exec sqlx.ExtContext, id string, hasConflict bool, conflictType models.ConflictType) error
}

type conflictStore interface {
	ListByTerm(ctx context.Context, academicYear string, semester models.Semester, onlyUnresolved bool) ([]models.Conflict, error)
	FindByID(ctx context.Context, id string) (*models.Conflict, error)
	MarkResolved(ctx context.Context, id string) error
	CountUnresolvedForEntry(ctx context.Context, entryID string) (int, error)
}

// ConflictService answers incremental and administrative conflict questions
// against the persisted schedule and manages conflict resolution.
type ConflictService struct {
	entries   entryReader
	conflicts conflictStore
	courses   courseLister
	rooms     roomLister
	lecturers lecturerLister
	slots     slotLister
	db        sqlx.ExtContext
	policy    scheduler.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

func NewConflictService(
	entries entryReader,
	conflicts conflictStore,
	courses courseLister,
	rooms roomLister,
	lecturers lecturerLister,
	slots slotLister,
	db sqlx.ExtContext,
	policy scheduler.Policy,
	validate *validator.Validate,
	logger *zap.Logger,
) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{
		entries:   entries,
		conflicts: conflicts,
		courses:   courses,
		rooms:     rooms,
		lecturers: lecturers,
		slots:     slots,
		db:        db,
		policy:    policy,
		validator: validate,
		logger:    logger,
	}
}

// CheckEntry validates a single placement against the entries already
// occupying the same slot. An empty slice means the placement is clean.
func (s *ConflictService) CheckEntry(ctx context.Context, req dto.CheckEntryRequest) ([]scheduler.Descriptor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entry payload")
	}

	existing, err := s.entries.ListBySlot(ctx, req.AcademicYear, req.Semester, req.Day, req.TimeSlotID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot entries")
	}

	candidate := models.TimetableEntry{
		ID:           req.EntryID,
		CourseID:     req.CourseID,
		RoomID:       req.RoomID,
		LecturerID:   req.LecturerID,
		Day:          req.Day,
		TimeSlotID:   req.TimeSlotID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
	}
	return scheduler.CheckEntry(candidate, existing), nil
}

// ValidateAssignment applies the full administrative rule set, including
// interval overlap across differently aligned slots, student group clashes
// and prerequisite co-scheduling.
func (s *ConflictService) ValidateAssignment(ctx context.Context, req dto.ValidateAssignmentRequest) (*dto.ValidateAssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	snap, err := s.buildSnapshot(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, err
	}
	existing, err := s.entries.ListByTerm(ctx, req.AcademicYear, req.Semester)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term entries")
	}

	detector := scheduler.NewDetector(snap)
	valid, descriptors := detector.ValidateAssignment(req.CourseID, req.RoomID, req.LecturerID, req.Day, req.TimeSlotID, existing)
	return &dto.ValidateAssignmentResponse{Valid: valid, Conflicts: descriptors}, nil
}

// ListConflicts returns the term's conflict records, optionally only the
// unresolved ones.
func (s *ConflictService) ListConflicts(ctx context.Context, query dto.ConflictQuery) ([]models.Conflict, error) {
	if query.AcademicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}
	if !query.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1, 2 or 3")
	}
	conflicts, err := s.conflicts.ListByTerm(ctx, query.AcademicYear, query.Semester, query.Unresolved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}
	return conflicts, nil
}

// Resolve marks a conflict resolved and clears the conflict flag on either
// entry once no unresolved conflicts reference it. Entries deleted since the
// conflict was recorded are tolerated.
func (s *ConflictService) Resolve(ctx context.Context, conflictID string) (*models.Conflict, error) {
	conflict, err := s.conflicts.FindByID(ctx, conflictID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conflict not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict")
	}

	if err := s.conflicts.MarkResolved(ctx, conflictID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve conflict")
	}
	conflict.Resolved = true

	s.clearEntryFlag(ctx, conflict.FirstEntryID)
	if conflict.SecondEntryID != nil && *conflict.SecondEntryID != "" {
		s.clearEntryFlag(ctx, *conflict.SecondEntryID)
	}
	return conflict, nil
}

func (s *ConflictService) clearEntryFlag(ctx context.Context, entryID string) {
	remaining, err := s.conflicts.CountUnresolvedForEntry(ctx, entryID)
	if err != nil {
		s.logger.Sugar().Warnw("failed to count unresolved conflicts", "entry_id", entryID, "error", err)
		return
	}
	if remaining > 0 {
		return
	}
	if err := s.entries.UpdateConflictFlag(ctx, s.db, entryID, false, ""); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return
		}
		s.logger.Sugar().Warnw("failed to clear entry conflict flag", "entry_id", entryID, "error", err)
	}
}

func (s *ConflictService) buildSnapshot(ctx context.Context, academicYear string, semester models.Semester) (*scheduler.Snapshot, error) {
	courses, err := s.courses.ListOffered(ctx, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	lecturers, err := s.lecturers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturers")
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	return scheduler.NewSnapshot(courses, rooms, lecturers, slots, s.policy), nil
}
