package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/middleware"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
)

// ScanHandler handles scan upload, review, and assignment endpoints.
type ScanHandler struct {
	reconcile     service.ReconcileService
	authService   service.AuthService
	scanRepo      port.ScanRepository
	storage       port.ObjectStorage
	presignExpiry int64
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(
	reconcile service.ReconcileService,
	authService service.AuthService,
	scanRepo port.ScanRepository,
	storage port.ObjectStorage,
	presignExpiry int64,
) *ScanHandler {
	return &ScanHandler{
		reconcile:     reconcile,
		authService:   authService,
		scanRepo:      scanRepo,
		storage:       storage,
		presignExpiry: presignExpiry,
	}
}

// Upload handles POST /api/v1/scans. It accepts one multipart file plus an
// optional student_id; with sync=true the scan is reconciled before the
// response, otherwise the queue worker picks it up.
func (h *ScanHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	input := &service.ReconcileInput{
		FileName:    header.Filename,
		ContentType: resolveContentType(header.Filename, header.Header.Get("Content-Type")),
		Data:        data,
		Source:      domain.SourceManualUpload,
	}

	if studentIDStr := c.PostForm("student_id"); studentIDStr != "" {
		studentID, parseErr := uuid.Parse(studentIDStr)
		if parseErr != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", "student_id must be a UUID")
			return
		}
		input.StudentID = &studentID
	}

	if c.Query("sync") == "true" {
		doc, err := h.reconcile.ReconcileFile(c.Request.Context(), input)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondCreated(c, doc)
		return
	}

	doc, err := h.reconcile.Submit(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, doc)
}

// Get handles GET /api/v1/scans/:id
func (h *ScanHandler) Get(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_SCAN_ID", "scan id must be a UUID")
		return
	}

	doc, err := h.scanRepo.GetByID(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// ListByStudent handles GET /api/v1/students/:id/scans
func (h *ScanHandler) ListByStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", "student id must be a UUID")
		return
	}
	offset, limit := paginationParams(c)

	docs, total, err := h.scanRepo.ListByStudent(c.Request.Context(), studentID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListNeedsReview handles GET /api/v1/scans/review
func (h *ScanHandler) ListNeedsReview(c *gin.Context) {
	offset, limit := paginationParams(c)

	docs, total, err := h.scanRepo.ListNeedsReview(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// assignRequest is the body for manual assignment requests.
type assignRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
}

// Assign handles POST /api/v1/scans/:id/assign
func (h *ScanHandler) Assign(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_SCAN_ID", "scan id must be a UUID")
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	doc, err := h.reconcile.AssignManually(c.Request.Context(), scanID, req.AssignmentID, middleware.GetEmail(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// AssignViaToken handles POST /api/v1/assign. The emailed one-click link
// carries a signed token instead of a session.
func (h *ScanHandler) AssignViaToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_TOKEN", "token query parameter is required")
		return
	}
	scanID, err := h.authService.ValidateAssignToken(token)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	doc, err := h.reconcile.AssignManually(c.Request.Context(), scanID, req.AssignmentID, "assign-link")
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// File handles GET /api/v1/scans/:id/file, returning a presigned URL for
// the archived scan image.
func (h *ScanHandler) File(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_SCAN_ID", "scan id must be a UUID")
		return
	}

	doc, err := h.scanRepo.GetByID(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	url, err := h.storage.GetPresignedURL(c.Request.Context(), doc.S3Bucket, doc.S3Key, h.presignExpiry)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url, "expires_in": h.presignExpiry})
}

// resolveContentType prefers the multipart header but falls back to the
// file extension, since phone uploads often send application/octet-stream.
func resolveContentType(filename, headerType string) string {
	if _, ok := domain.AllowedContentTypes[headerType]; ok {
		return headerType
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return domain.ContentTypeFor[ft]
	}
	return headerType
}

func paginationParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
