package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/service"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
	"github.com/campushq/timetable-api/pkg/response"
)

type conflictManager interface {
	ListConflicts(ctx context.Context, query dto.ConflictQuery) ([]models.Conflict, error)
	Resolve(ctx context.Context, conflictID string) (*models.Conflict, error)
}

// ConflictHandler exposes conflict listing and resolution endpoints.
type ConflictHandler struct {
	service conflictManager
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// List godoc
// @Summary List conflicts for one term
// @Tags Conflicts
// @Produce json
// @Param year query string true "Academic year"
// @Param semester query int true "Semester (1, 2 or 3)"
// @Param unresolved query bool false "Only unresolved conflicts"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	var query dto.ConflictQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	conflicts, err := h.service.ListConflicts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// Resolve godoc
// @Summary Mark a conflict as resolved
// @Description Clears the conflict flag on the affected entries once no unresolved conflicts reference them.
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conflicts/{id}/resolve [put]
func (h *ConflictHandler) Resolve(c *gin.Context) {
	conflict, err := h.service.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}
