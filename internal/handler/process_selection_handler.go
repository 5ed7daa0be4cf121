package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisel/admissions-api/internal/service"
	"github.com/unisel/admissions-api/pkg/response"
)

// ProcessSelectionHandler exposes selection process read endpoints.
type ProcessSelectionHandler struct {
	processes *service.ProcessSelectionService
}

// NewProcessSelectionHandler constructs handler.
func NewProcessSelectionHandler(processes *service.ProcessSelectionService) *ProcessSelectionHandler {
	return &ProcessSelectionHandler{processes: processes}
}

// List godoc
// @Summary List selection processes
// @Tags Process Selections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /process-selections [get]
func (h *ProcessSelectionHandler) List(c *gin.Context) {
	processes, err := h.processes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, processes, nil)
}

// Get godoc
// @Summary Get selection process
// @Tags Process Selections
// @Produce json
// @Param id path string true "Process selection ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /process-selections/{id} [get]
func (h *ProcessSelectionHandler) Get(c *gin.Context) {
	process, err := h.processes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, process, nil)
}

// ListConvocationLists godoc
// @Summary List convocation lists of a selection process
// @Tags Process Selections
// @Produce json
// @Param id path string true "Process selection ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /process-selections/{id}/convocation-lists [get]
func (h *ProcessSelectionHandler) ListConvocationLists(c *gin.Context) {
	lists, err := h.processes.ListConvocationLists(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lists, nil)
}
