package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisel/admissions-api/internal/models"
	"github.com/unisel/admissions-api/internal/service"
	appErrors "github.com/unisel/admissions-api/pkg/errors"
	"github.com/unisel/admissions-api/pkg/response"
)

// OutcomeHandler exposes outcome processing and listing endpoints.
type OutcomeHandler struct {
	outcomes     *service.OutcomeService
	applications *service.ApplicationService
}

// NewOutcomeHandler constructs handler.
func NewOutcomeHandler(outcomes *service.OutcomeService, applications *service.ApplicationService) *OutcomeHandler {
	return &OutcomeHandler{outcomes: outcomes, applications: applications}
}

// Process godoc
// @Summary Process application outcomes
// @Description Rebuilds every eligibility outcome of a selection process
// @Tags Outcomes
// @Produce json
// @Param id path string true "Process selection ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /process-selections/{id}/outcomes/process [post]
func (h *OutcomeHandler) Process(c *gin.Context) {
	summary, err := h.outcomes.ProcessOutcomes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Create godoc
// @Summary Create outcome manually
// @Description Outcomes are only produced by processing runs; manual creation is not allowed
// @Tags Outcomes
// @Produce json
// @Param id path string true "Process selection ID"
// @Failure 403 {object} response.Envelope
// @Router /process-selections/{id}/outcomes [post]
func (h *OutcomeHandler) Create(c *gin.Context) {
	response.Error(c, appErrors.Clone(appErrors.ErrMethodNotAllowed, "outcomes are produced by processing runs only"))
}

// List godoc
// @Summary List outcomes of a selection process
// @Tags Outcomes
// @Produce json
// @Param id path string true "Process selection ID"
// @Param status query string false "Outcome status filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /process-selections/{id}/outcomes [get]
func (h *OutcomeHandler) List(c *gin.Context) {
	filter := models.OutcomeFilter{
		ProcessSelectionID: c.Param("id"),
		Status:             models.OutcomeStatus(c.Query("status")),
		Page:               queryInt(c, "page"),
		PageSize:           queryInt(c, "pageSize"),
	}

	outcomes, pagination, err := h.applications.ListOutcomes(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes, pagination)
}
