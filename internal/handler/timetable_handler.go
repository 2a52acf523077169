package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/scheduler"
	"github.com/campushq/timetable-api/internal/service"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
	"github.com/campushq/timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

type timetableReader interface {
	ListByTerm(ctx context.Context, academicYear string, semester models.Semester) ([]models.TimetableEntry, error)
	Get(ctx context.Context, id string) (*models.TimetableEntry, error)
}

type entryChecker interface {
	CheckEntry(ctx context.Context, req dto.CheckEntryRequest) ([]scheduler.Descriptor, error)
	ValidateAssignment(ctx context.Context, req dto.ValidateAssignmentRequest) (*dto.ValidateAssignmentResponse, error)
}

// TimetableHandler exposes timetable generation and read endpoints.
type TimetableHandler struct {
	generator timetableGenerator
	reader    timetableReader
	checker   entryChecker
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(generator *service.GenerationService, reader *service.TimetableService, checker *service.ConflictService) *TimetableHandler {
	return &TimetableHandler{generator: generator, reader: reader, checker: checker}
}

// Generate godoc
// @Summary Generate a full timetable for one term
// @Description Runs the AI first pass with an evolutionary fallback, commits the result atomically and returns the schedule with its conflict report.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List the committed timetable for one term
// @Tags Timetable
// @Produce json
// @Param year query string true "Academic year"
// @Param semester query int true "Semester (1, 2 or 3)"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.ConflictQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	entries, err := h.reader.ListByTerm(c.Request.Context(), query.AcademicYear, query.Semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Get godoc
// @Summary Get a single timetable entry
// @Tags Timetable
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	entry, err := h.reader.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// CheckEntry godoc
// @Summary Check one placement against the persisted schedule
// @Description Incremental room and lecturer double-booking check for manual edits. An empty conflict list means the placement is clean.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.CheckEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/check [post]
func (h *TimetableHandler) CheckEntry(c *gin.Context) {
	var req dto.CheckEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entry payload"))
		return
	}
	descriptors, err := h.checker.CheckEntry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if descriptors == nil {
		descriptors = []scheduler.Descriptor{}
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": descriptors}, nil)
}

// Validate godoc
// @Summary Validate an administrative assignment
// @Description Applies the full rule set including interval overlap, student group clashes and prerequisite co-scheduling.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.ValidateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/validate [post]
func (h *TimetableHandler) Validate(c *gin.Context) {
	var req dto.ValidateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	result, err := h.checker.ValidateAssignment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
