package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/scheduler"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type stubEntryReader struct {
	byTerm       []models.TimetableEntry
	bySlot       []models.TimetableEntry
	found        *models.TimetableEntry
	flagCleared  []string
	updateErr    error
	listSlotErr  error
}

func (s *stubEntryReader) ListByTerm(context.Context, string, models.Semester) ([]models.TimetableEntry, error) {
	return s.byTerm, nil
}

func (s *stubEntryReader) ListBySlot(context.Context, string, models.Semester, models.DayOfWeek, string) ([]models.TimetableEntry, error) {
	return s.bySlot, s.listSlotErr
}

func (s *stubEntryReader) FindByID(context.Context, string) (*models.TimetableEntry, error) {
	if s.found == nil {
		return nil, sql.ErrNoRows
	}
	return s.found, nil
}

func (s *stubEntryReader) UpdateConflictFlag(_ context.Context, _ sqlx.ExtContext, id string, _ bool, _ models.ConflictType) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.flagCleared = append(s.flagCleared, id)
	return nil
}

type stubConflictStore struct {
	conflicts  []models.Conflict
	found      *models.Conflict
	resolved   []string
	unresolved int
}

func (s *stubConflictStore) ListByTerm(context.Context, string, models.Semester, bool) ([]models.Conflict, error) {
	return s.conflicts, nil
}

func (s *stubConflictStore) FindByID(context.Context, string) (*models.Conflict, error) {
	if s.found == nil {
		return nil, sql.ErrNoRows
	}
	return s.found, nil
}

func (s *stubConflictStore) MarkResolved(_ context.Context, id string) error {
	s.resolved = append(s.resolved, id)
	return nil
}

func (s *stubConflictStore) CountUnresolvedForEntry(context.Context, string) (int, error) {
	return s.unresolved, nil
}

func newConflictFixture(entries *stubEntryReader, conflicts *stubConflictStore) *ConflictService {
	return NewConflictService(
		entries, conflicts,
		&stubCourses{courses: fixtureCourses()},
		&stubRooms{rooms: fixtureRooms()},
		&stubLecturers{lecturers: fixtureLecturers()},
		&stubSlots{slots: fixtureSlots()},
		nil,
		scheduler.Policy{MaxCoursesPerDay: 3},
		nil, nil,
	)
}

func checkRequest() dto.CheckEntryRequest {
	return dto.CheckEntryRequest{
		CourseID:     "c1",
		RoomID:       "r1",
		LecturerID:   "l1",
		Day:          models.Monday,
		TimeSlotID:   "s1",
		AcademicYear: "2026/2027",
		Semester:     models.SemesterFirst,
	}
}

func TestCheckEntryReportsRoomCollision(t *testing.T) {
	entries := &stubEntryReader{bySlot: []models.TimetableEntry{{
		ID: "e1", CourseID: "c2", RoomID: "r1", LecturerID: "l2",
		Day: models.Monday, TimeSlotID: "s1",
		AcademicYear: "2026/2027", Semester: models.SemesterFirst,
	}}}
	svc := newConflictFixture(entries, &stubConflictStore{})

	descriptors, err := svc.CheckEntry(context.Background(), checkRequest())
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, models.ConflictRoom, descriptors[0].Type)
}

func TestCheckEntryCleanSlot(t *testing.T) {
	svc := newConflictFixture(&stubEntryReader{}, &stubConflictStore{})

	descriptors, err := svc.CheckEntry(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestCheckEntryToleratesNoRows(t *testing.T) {
	entries := &stubEntryReader{listSlotErr: sql.ErrNoRows}
	svc := newConflictFixture(entries, &stubConflictStore{})

	descriptors, err := svc.CheckEntry(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestCheckEntryValidation(t *testing.T) {
	svc := newConflictFixture(&stubEntryReader{}, &stubConflictStore{})

	_, err := svc.CheckEntry(context.Background(), dto.CheckEntryRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateAssignmentService(t *testing.T) {
	entries := &stubEntryReader{byTerm: []models.TimetableEntry{{
		ID: "e1", CourseID: "c2", RoomID: "r1", LecturerID: "l2",
		Day: models.Monday, TimeSlotID: "s1",
		AcademicYear: "2026/2027", Semester: models.SemesterFirst,
	}}}
	svc := newConflictFixture(entries, &stubConflictStore{})

	result, err := svc.ValidateAssignment(context.Background(), dto.ValidateAssignmentRequest{
		CourseID:     "c1",
		RoomID:       "r1",
		LecturerID:   "l1",
		Day:          models.Monday,
		TimeSlotID:   "s1",
		AcademicYear: "2026/2027",
		Semester:     models.SemesterFirst,
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Conflicts)
	assert.Equal(t, models.ConflictRoom, result.Conflicts[0].Type)
}

func TestListConflictsRequiresTerm(t *testing.T) {
	svc := newConflictFixture(&stubEntryReader{}, &stubConflictStore{})

	_, err := svc.ListConflicts(context.Background(), dto.ConflictQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListConflicts(t *testing.T) {
	store := &stubConflictStore{conflicts: []models.Conflict{{ID: "k1", Type: models.ConflictRoom}}}
	svc := newConflictFixture(&stubEntryReader{}, store)

	conflicts, err := svc.ListConflicts(context.Background(), dto.ConflictQuery{
		AcademicYear: "2026/2027", Semester: models.SemesterFirst,
	})
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestResolveClearsEntryFlags(t *testing.T) {
	second := "e2"
	store := &stubConflictStore{
		found: &models.Conflict{ID: "k1", FirstEntryID: "e1", SecondEntryID: &second, Type: models.ConflictRoom},
	}
	entries := &stubEntryReader{}
	svc := newConflictFixture(entries, store)

	conflict, err := svc.Resolve(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, conflict.Resolved)
	assert.Equal(t, []string{"k1"}, store.resolved)
	assert.ElementsMatch(t, []string{"e1", "e2"}, entries.flagCleared)
}

func TestResolveKeepsFlagWithRemainingConflicts(t *testing.T) {
	store := &stubConflictStore{
		found:      &models.Conflict{ID: "k1", FirstEntryID: "e1", Type: models.ConflictRoom},
		unresolved: 2,
	}
	entries := &stubEntryReader{}
	svc := newConflictFixture(entries, store)

	_, err := svc.Resolve(context.Background(), "k1")
	require.NoError(t, err)
	assert.Empty(t, entries.flagCleared)
}

func TestResolveToleratesDeletedEntry(t *testing.T) {
	store := &stubConflictStore{
		found: &models.Conflict{ID: "k1", FirstEntryID: "e1", Type: models.ConflictRoom},
	}
	entries := &stubEntryReader{updateErr: sql.ErrNoRows}
	svc := newConflictFixture(entries, store)

	conflict, err := svc.Resolve(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, conflict.Resolved)
}

func TestResolveNotFound(t *testing.T) {
	svc := newConflictFixture(&stubEntryReader{}, &stubConflictStore{})

	_, err := svc.Resolve(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
