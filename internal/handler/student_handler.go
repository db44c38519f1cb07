package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/port"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
)

// StudentHandler handles student, course, and sync endpoints.
type StudentHandler struct {
	studentRepo port.StudentRepository
	courseRepo  port.CourseRepository
	syncService service.SyncService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentRepo port.StudentRepository, courseRepo port.CourseRepository, syncService service.SyncService) *StudentHandler {
	return &StudentHandler{
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		syncService: syncService,
	}
}

// List handles GET /api/v1/students
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.studentRepo.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, students)
}

// Courses handles GET /api/v1/students/:id/courses
func (h *StudentHandler) Courses(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_STUDENT_ID", "student id must be a UUID")
		return
	}

	courses, err := h.courseRepo.ListActiveByStudent(c.Request.Context(), studentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, courses)
}

// Sync handles POST /api/v1/sync, refreshing the local Canvas cache.
func (h *StudentHandler) Sync(c *gin.Context) {
	start := time.Now()
	result, err := h.syncService.SyncAll(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"result": result, "duration": time.Since(start).String()})
}
