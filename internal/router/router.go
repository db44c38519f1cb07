package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jdeans2217/canvas-parent-cli/internal/handler"
	"github.com/jdeans2217/canvas-parent-cli/internal/middleware"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	scanH *handler.ScanHandler,
	studentH *handler.StudentHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)

	// One-click assignment from the review email; authorized by the signed
	// token in the link, not a session.
	v1.POST("/assign", scanH.AssignViaToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Scan routes
	scans := protected.Group("/scans")
	scans.POST("", scanH.Upload)
	scans.GET("/review", scanH.ListNeedsReview)
	scans.GET("/:id", scanH.Get)
	scans.GET("/:id/file", scanH.File)
	scans.POST("/:id/assign", scanH.Assign)

	// Student routes
	students := protected.Group("/students")
	students.GET("", studentH.List)
	students.GET("/:id/courses", studentH.Courses)
	students.GET("/:id/scans", scanH.ListByStudent)
	students.GET("/:id/trends", reportH.GradeTrends)
	students.GET("/:id/export/csv", reportH.ExportCSV)
	students.GET("/:id/export/xlsx", reportH.ExportXLSX)

	// Catalog sync
	protected.POST("/sync", studentH.Sync)

	return r
}
