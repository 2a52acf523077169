package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "course_id", "room_id", "lecturer_id", "day", "time_slot_id",
		"academic_year", "semester", "has_conflict", "conflict_type", "created_at", "updated_at",
	})
}

func TestTimetableEntryRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	now := time.Now()
	rows := entryRows().
		AddRow("e1", "c1", "r1", "l1", "MONDAY", "s1", "2026/2027", 1, false, "", now, now).
		AddRow("e2", "c2", "r2", "l2", "TUESDAY", "s2", "2026/2027", 1, true, "ROOM", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE academic_year = $1 AND semester = $2 ORDER BY created_at, id")).
		WithArgs("2026/2027", models.SemesterFirst).
		WillReturnRows(rows)

	entries, err := repo.ListByTerm(context.Background(), "2026/2027", models.SemesterFirst)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.Monday, entries[0].Day)
	assert.True(t, entries[1].HasConflict)
	assert.Equal(t, models.ConflictRoom, entries[1].ConflictType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryRepositoryListBySlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("AND day = $3 AND time_slot_id = $4")).
		WithArgs("2026/2027", models.SemesterFirst, models.Monday, "s1").
		WillReturnRows(entryRows().AddRow("e1", "c1", "r1", "l1", "MONDAY", "s1", "2026/2027", 1, false, "", now, now))

	entries, err := repo.ListBySlot(context.Background(), "2026/2027", models.SemesterFirst, models.Monday, "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	entries := []models.TimetableEntry{
		{CourseID: "c1", RoomID: "r1", LecturerID: "l1", Day: models.Monday, TimeSlotID: "s1", AcademicYear: "2026/2027", Semester: 1},
		{CourseID: "c2", RoomID: "r2", LecturerID: "l2", Day: models.Tuesday, TimeSlotID: "s2", AcademicYear: "2026/2027", Semester: 1},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, entries))
	require.NoError(t, tx.Commit())

	// IDs and timestamps were assigned in place.
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[1].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryRepositoryDeleteByTermTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE academic_year = $1 AND semester = $2")).
		WithArgs("2026/2027", models.SemesterFirst).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByTermTx(context.Background(), tx, "2026/2027", models.SemesterFirst))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableEntryRepositoryUpdateConflictFlag(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableEntryRepository(db)

	mock.ExpectExec("UPDATE timetable_entries SET has_conflict").
		WithArgs(true, models.ConflictRoom, sqlmock.AnyArg(), "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateConflictFlag(context.Background(), nil, "e1", true, models.ConflictRoom)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
