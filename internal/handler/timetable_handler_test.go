package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/scheduler"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type generatorMock struct {
	resp *dto.GenerateTimetableResponse
	err  error
}

func (m *generatorMock) Generate(context.Context, dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type readerMock struct {
	entries []models.TimetableEntry
}

func (m *readerMock) ListByTerm(context.Context, string, models.Semester) ([]models.TimetableEntry, error) {
	return m.entries, nil
}

func (m *readerMock) Get(context.Context, string) (*models.TimetableEntry, error) {
	if len(m.entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
	}
	return &m.entries[0], nil
}

type checkerMock struct {
	descriptors []scheduler.Descriptor
	validation  *dto.ValidateAssignmentResponse
}

func (m *checkerMock) CheckEntry(context.Context, dto.CheckEntryRequest) ([]scheduler.Descriptor, error) {
	return m.descriptors, nil
}

func (m *checkerMock) ValidateAssignment(context.Context, dto.ValidateAssignmentRequest) (*dto.ValidateAssignmentResponse, error) {
	return m.validation, nil
}

func testHandler(gen *generatorMock, reader *readerMock, checker *checkerMock) *TimetableHandler {
	return &TimetableHandler{generator: gen, reader: reader, checker: checker}
}

func TestTimetableHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testHandler(&generatorMock{resp: &dto.GenerateTimetableResponse{
		Method:  models.MethodGenetic,
		Entries: []models.TimetableEntry{{ID: "e1"}},
	}}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.GenerateTimetableRequest{AcademicYear: "2026/2027", Semester: 1})
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.GenerateTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.MethodGenetic, envelope.Data.Method)
	assert.Len(t, envelope.Data.Entries, 1)
}

func TestTimetableHandlerGenerateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testHandler(&generatorMock{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Generate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGenerateConflictStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testHandler(&generatorMock{err: appErrors.Clone(appErrors.ErrGenerationInProgress, "")}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.GenerateTimetableRequest{AcademicYear: "2026/2027", Semester: 1})
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Generate(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTimetableHandlerGeneratePreconditionStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testHandler(&generatorMock{err: appErrors.Clone(appErrors.ErrNoCourses, "")}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.GenerateTimetableRequest{AcademicYear: "2026/2027", Semester: 1})
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Generate(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestTimetableHandlerCheckEntryEmptyListNotNull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testHandler(nil, nil, &checkerMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CheckEntryRequest{
		CourseID: "c1", RoomID: "r1", LecturerID: "l1",
		Day: models.Monday, TimeSlotID: "s1",
		AcademicYear: "2026/2027", Semester: 1,
	})
	req, _ := http.NewRequest(http.MethodPost, "/timetable/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.CheckEntry(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"conflicts":[]`)
}

func TestTimetableHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testHandler(nil, &readerMock{entries: []models.TimetableEntry{{ID: "e1"}}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timetable?year=2026/2027&semester=1", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"e1"`)
}
