package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"localsphere-backend/internal/domain"
	reportService "localsphere-backend/internal/service/report"
	"localsphere-backend/pkg/response"
)

// Handler handles moderation report HTTP requests
type Handler struct {
	reportSvc *reportService.Service
}

// NewHandler creates a new report handler
func NewHandler(reportSvc *reportService.Service) *Handler {
	return &Handler{reportSvc: reportSvc}
}

// Create files a new report
// POST /api/reports
func (h *Handler) Create(c *gin.Context) {
	var req domain.ReportCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Invalid report data")
		return
	}

	report, err := h.reportSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c, "Failed to create report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// List returns all reports, newest first
// GET /api/reports
func (h *Handler) List(c *gin.Context) {
	reports, err := h.reportSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to list reports")
		return
	}
	c.JSON(http.StatusOK, reports)
}
