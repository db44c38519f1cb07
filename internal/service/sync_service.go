package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	Students    int `json:"students"`
	Courses     int `json:"courses"`
	Assignments int `json:"assignments"`
	Snapshots   int `json:"snapshots"`
}

// SyncService mirrors the remote assignment catalog into the local cache.
// The cache is read-only from the scanner's point of view; sync is the only
// writer.
type SyncService interface {
	// SyncAll refreshes students, courses and assignments, and records a
	// grade snapshot per active course.
	SyncAll(ctx context.Context) (*SyncResult, error)
}

type syncService struct {
	catalog      port.AssignmentCatalog
	studentRepo  port.StudentRepository
	courseRepo   port.CourseRepository
	assignRepo   port.AssignmentRepository
	snapshotRepo port.SnapshotRepository
}

// NewSyncService creates a SyncService implementation.
func NewSyncService(
	catalog port.AssignmentCatalog,
	studentRepo port.StudentRepository,
	courseRepo port.CourseRepository,
	assignRepo port.AssignmentRepository,
	snapshotRepo port.SnapshotRepository,
) SyncService {
	return &syncService{
		catalog:      catalog,
		studentRepo:  studentRepo,
		courseRepo:   courseRepo,
		assignRepo:   assignRepo,
		snapshotRepo: snapshotRepo,
	}
}

func (s *syncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	observees, err := s.catalog.ListObservees(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync.SyncAll: listing observees: %w", err)
	}

	result := &SyncResult{}
	for _, observee := range observees {
		student := &domain.Student{
			ID:       uuid.New(),
			CanvasID: observee.CanvasID,
			Name:     observee.Name,
		}
		if err := s.studentRepo.Upsert(ctx, student); err != nil {
			return nil, fmt.Errorf("sync.SyncAll: upserting student %d: %w", observee.CanvasID, err)
		}
		result.Students++

		if err := s.syncStudent(ctx, student, result); err != nil {
			return nil, err
		}
	}

	log.Printf("sync: completed (students=%d, courses=%d, assignments=%d, snapshots=%d)",
		result.Students, result.Courses, result.Assignments, result.Snapshots)
	return result, nil
}

func (s *syncService) syncStudent(ctx context.Context, student *domain.Student, result *SyncResult) error {
	courses, err := s.catalog.ListCourses(ctx, student.CanvasID)
	if err != nil {
		return fmt.Errorf("sync: listing courses for student %d: %w", student.CanvasID, err)
	}

	for _, remote := range courses {
		course := &domain.Course{
			ID:        uuid.New(),
			CanvasID:  remote.CanvasID,
			StudentID: student.ID,
			Name:      remote.Name,
			Term:      remote.Term,
			TermStart: remote.TermStart,
			TermEnd:   remote.TermEnd,
			IsActive:  true,
		}
		if err := s.courseRepo.Upsert(ctx, course); err != nil {
			return fmt.Errorf("sync: upserting course %d: %w", remote.CanvasID, err)
		}
		result.Courses++

		entries, err := s.catalog.ListAssignments(ctx, remote.CanvasID, student.CanvasID)
		if err != nil {
			return fmt.Errorf("sync: listing assignments for course %d: %w", remote.CanvasID, err)
		}

		graded, missing := 0, 0
		for _, entry := range entries {
			assignment := &domain.Assignment{
				ID:              uuid.New(),
				CanvasID:        entry.CanvasID,
				CourseID:        course.ID,
				Name:            entry.Name,
				Description:     entry.Description,
				DueAt:           entry.DueAt,
				PointsPossible:  entry.PointsPossible,
				SubmissionTypes: strings.Join(entry.SubmissionTypes, ","),
				IsSubmitted:     entry.IsSubmitted,
				Score:           entry.Score,
				Grade:           entry.Grade,
				GradedAt:        entry.GradedAt,
			}
			if err := s.assignRepo.Upsert(ctx, assignment); err != nil {
				return fmt.Errorf("sync: upserting assignment %d: %w", entry.CanvasID, err)
			}
			result.Assignments++

			if entry.Score != nil {
				graded++
			}
			if isMissing(entry) {
				missing++
			}
		}

		snapshot := &domain.GradeSnapshot{
			ID:                 uuid.New(),
			StudentID:          student.ID,
			CourseID:           course.ID,
			CurrentScore:       remote.CurrentScore,
			LetterGrade:        remote.CurrentGrade,
			AssignmentsTotal:   len(entries),
			AssignmentsGraded:  graded,
			AssignmentsMissing: missing,
			SnapshotDate:       time.Now().UTC(),
		}
		if err := s.snapshotRepo.Insert(ctx, snapshot); err != nil {
			return fmt.Errorf("sync: inserting snapshot for course %d: %w", remote.CanvasID, err)
		}
		result.Snapshots++
	}
	return nil
}

// isMissing reports whether an assignment is past due with nothing turned in.
func isMissing(entry port.CatalogEntry) bool {
	if entry.IsSubmitted || entry.Score != nil {
		return false
	}
	return entry.DueAt != nil && entry.DueAt.Before(time.Now())
}
