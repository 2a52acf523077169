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

func TestGenerationAttemptRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationAttemptRepository(db)

	mock.ExpectExec("INSERT INTO generation_attempts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	attempt := &models.GenerationAttempt{
		Method:           models.MethodGenetic,
		DurationMs:       1200,
		Success:          true,
		EntriesGenerated: 42,
		AcademicYear:     "2026/2027",
		Semester:         models.SemesterFirst,
	}
	require.NoError(t, repo.Insert(context.Background(), attempt))
	assert.NotEmpty(t, attempt.ID)
	assert.False(t, attempt.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationAttemptRepositoryInsertNil(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationAttemptRepository(db)

	assert.Error(t, repo.Insert(context.Background(), nil))
}

func TestGenerationAttemptRepositoryAggregateByMethod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationAttemptRepository(db)

	rows := sqlmock.NewRows([]string{"method", "success_rate", "avg_duration_ms", "avg_conflicts", "avg_entries", "total_attempts"}).
		AddRow("ai", 0.25, 800.0, 3.5, 40.0, 8).
		AddRow("genetic", 0.95, 4200.0, 1.2, 40.0, 20)
	mock.ExpectQuery("GROUP BY method").WillReturnRows(rows)

	metrics, err := repo.AggregateByMethod(context.Background())
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, models.MethodAI, metrics[0].Method)
	assert.InDelta(t, 0.25, metrics[0].SuccessRate, 1e-9)
	assert.Equal(t, 20, metrics[1].TotalAttempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationAttemptRepositoryRecentFailures(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGenerationAttemptRepository(db)

	since := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("success = FALSE AND created_at >= $4")).
		WithArgs(models.MethodAI, "2026/2027", models.SemesterFirst, since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.RecentFailures(context.Background(), models.MethodAI, "2026/2027", models.SemesterFirst, since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
