package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type conflictManagerMock struct {
	conflicts []models.Conflict
	resolved  *models.Conflict
	err       error
	lastQuery dto.ConflictQuery
}

func (m *conflictManagerMock) ListConflicts(_ context.Context, query dto.ConflictQuery) ([]models.Conflict, error) {
	m.lastQuery = query
	return m.conflicts, m.err
}

func (m *conflictManagerMock) Resolve(context.Context, string) (*models.Conflict, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resolved, nil
}

func TestConflictHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &conflictManagerMock{conflicts: []models.Conflict{{ID: "cf1", Type: models.ConflictRoom}}}
	handler := &ConflictHandler{service: mock}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/conflicts?year=2026/2027&semester=1&unresolved=true", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cf1"`)
	assert.Equal(t, "2026/2027", mock.lastQuery.AcademicYear)
	assert.True(t, mock.lastQuery.Unresolved)
}

func TestConflictHandlerListEmptyListNotNull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ConflictHandler{service: &conflictManagerMock{}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/conflicts?year=2026/2027&semester=1", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestConflictHandlerResolve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolved := &models.Conflict{ID: "cf1", Resolved: true}
	handler := &ConflictHandler{service: &conflictManagerMock{resolved: resolved}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/conflicts/cf1/resolve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "cf1"}}

	handler.Resolve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resolved":true`)
}

func TestConflictHandlerResolveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ConflictHandler{service: &conflictManagerMock{err: appErrors.Clone(appErrors.ErrNotFound, "conflict not found")}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/conflicts/missing/resolve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Resolve(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
