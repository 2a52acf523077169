package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/models"
)

func conflictRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "first_entry_id", "second_entry_id", "type", "description",
		"resolved", "academic_year", "semester", "created_at",
	})
}

func TestConflictRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	rows := conflictRows().
		AddRow("k1", "e1", "e2", "ROOM", "room double-booked", false, "2026/2027", 1, time.Now()).
		AddRow("k2", "e3", nil, "CAPACITY", "room too small", false, "2026/2027", 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM conflicts WHERE academic_year = $1 AND semester = $2 ORDER BY created_at, id")).
		WithArgs("2026/2027", models.SemesterFirst).
		WillReturnRows(rows)

	conflicts, err := repo.ListByTerm(context.Background(), "2026/2027", models.SemesterFirst, false)
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, models.ConflictRoom, conflicts[0].Type)
	assert.Nil(t, conflicts[1].SecondEntryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryListByTermUnresolvedOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND resolved = FALSE ORDER BY created_at, id")).
		WithArgs("2026/2027", models.SemesterFirst).
		WillReturnRows(conflictRows())

	conflicts, err := repo.ListByTerm(context.Background(), "2026/2027", models.SemesterFirst, true)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryMarkResolved(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE conflicts SET resolved = TRUE WHERE id = $1")).
		WithArgs("k1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkResolved(context.Background(), "k1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryMarkResolvedMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE conflicts SET resolved = TRUE WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkResolved(context.Background(), "missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryCountUnresolvedForEntry(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM conflicts WHERE resolved = FALSE AND (first_entry_id = $1 OR second_entry_id = $1)")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountUnresolvedForEntry(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conflicts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	conflicts := []models.Conflict{
		{FirstEntryID: "e1", Type: models.ConflictRoom, Description: "room double-booked", AcademicYear: "2026/2027", Semester: 1},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, conflicts))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, conflicts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
