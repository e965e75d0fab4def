package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/core"
	"lifenotes-backend-go/internal/models"
)

// ReportHandler handles lesson report endpoints.
type ReportHandler struct {
	reportService core.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs core.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: rs, logger: logger}
}

// CreateReport handles POST /reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	report, err := h.reportService.CreateReport(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, InsertAck{Acknowledged: true, InsertedID: report.ID})
}

// ListReports handles GET /reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.ListReports(c.Request.Context())
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
