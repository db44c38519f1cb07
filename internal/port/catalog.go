package port

import (
	"context"
	"time"
)

// CatalogStudent is an observed student as reported by Canvas.
type CatalogStudent struct {
	CanvasID int64
	Name     string
}

// CatalogCourse is an active course enrollment as reported by Canvas.
type CatalogCourse struct {
	CanvasID     int64
	Name         string
	Term         string
	TermStart    *time.Time
	TermEnd      *time.Time
	CurrentScore *float64
	CurrentGrade string
}

// CatalogEntry is an assignment plus the student's submission state as
// reported by Canvas. Read-only from this system's point of view.
type CatalogEntry struct {
	CanvasID        int64
	Name            string
	Description     string
	DueAt           *time.Time
	PointsPossible  *float64
	SubmissionTypes []string
	IsSubmitted     bool
	Score           *float64
	Grade           string
	GradedAt        *time.Time
}

// AssignmentCatalog abstracts the course-management service. Implementations
// never write back.
type AssignmentCatalog interface {
	ListObservees(ctx context.Context) ([]CatalogStudent, error)
	ListCourses(ctx context.Context, studentCanvasID int64) ([]CatalogCourse, error)
	ListAssignments(ctx context.Context, courseCanvasID, studentCanvasID int64) ([]CatalogEntry, error)
}
