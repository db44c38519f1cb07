package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/service"
)

// ReportHandler handles scan history and grade trend reporting endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GradeTrends handles GET /api/v1/students/:id/trends
func (h *ReportHandler) GradeTrends(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", "student id must be a UUID")
		return
	}
	since := sinceParam(c, 90)

	snapshots, err := h.reportService.GradeTrends(c.Request.Context(), studentID, since)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snapshots)
}

// ExportCSV handles GET /api/v1/students/:id/export/csv
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", "student id must be a UUID")
		return
	}

	var buf bytes.Buffer
	filename, err := h.reportService.ExportCSV(c.Request.Context(), &buf, studentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/students/:id/export/xlsx
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", "student id must be a UUID")
		return
	}
	since := sinceParam(c, 90)

	var buf bytes.Buffer
	filename, err := h.reportService.ExportXLSX(c.Request.Context(), &buf, studentID, since)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// sinceParam reads the days query parameter and converts it to a cutoff time.
func sinceParam(c *gin.Context, defaultDays int) time.Time {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultDays)))
	if err != nil || days <= 0 {
		days = defaultDays
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}
