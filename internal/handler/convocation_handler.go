package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisel/admissions-api/internal/service"
	"github.com/unisel/admissions-api/pkg/response"
)

// ConvocationHandler exposes convocation list generation and reads.
type ConvocationHandler struct {
	convocations *service.ConvocationService
	exports      *service.ExportService
}

// NewConvocationHandler constructs handler.
func NewConvocationHandler(convocations *service.ConvocationService, exports *service.ExportService) *ConvocationHandler {
	return &ConvocationHandler{convocations: convocations, exports: exports}
}

// Generate godoc
// @Summary Generate convocation list rows
// @Description Ranks approved outcomes into the list and inserts the rows
// @Tags Convocations
// @Produce json
// @Param id path string true "Convocation list ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /convocation-lists/{id}/generate [post]
func (h *ConvocationHandler) Generate(c *gin.Context) {
	inserted, err := h.convocations.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"inserted": inserted}, nil)
}

// Get godoc
// @Summary Get convocation list
// @Tags Convocations
// @Produce json
// @Param id path string true "Convocation list ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /convocation-lists/{id} [get]
func (h *ConvocationHandler) Get(c *gin.Context) {
	list, err := h.convocations.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ListRows godoc
// @Summary List convocation list rows
// @Tags Convocations
// @Produce json
// @Param id path string true "Convocation list ID"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /convocation-lists/{id}/applications [get]
func (h *ConvocationHandler) ListRows(c *gin.Context) {
	rows, pagination, err := h.convocations.ListRows(c.Request.Context(), c.Param("id"), queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// ExportCSV godoc
// @Summary Export convocation list as CSV
// @Tags Convocations
// @Produce text/csv
// @Param id path string true "Convocation list ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /convocation-lists/{id}/export/csv [get]
func (h *ConvocationHandler) ExportCSV(c *gin.Context) {
	payload, filename, err := h.exports.ExportCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export convocation list as PDF
// @Tags Convocations
// @Produce application/pdf
// @Param id path string true "Convocation list ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /convocation-lists/{id}/export/pdf [get]
func (h *ConvocationHandler) ExportPDF(c *gin.Context) {
	payload, filename, err := h.exports.ExportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}
