package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

type assignmentRepo struct {
	db *sqlx.DB
}

// NewAssignmentRepo creates a new PostgreSQL-backed AssignmentRepository.
func NewAssignmentRepo(db *sqlx.DB) port.AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Upsert(ctx context.Context, assignment *domain.Assignment) error {
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	err := r.db.GetContext(ctx, assignment,
		`INSERT INTO assignments (
			id, canvas_id, course_id, name, description, due_at, points_possible,
			submission_types, is_submitted, score, grade, graded_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (canvas_id, course_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			due_at = EXCLUDED.due_at,
			points_possible = EXCLUDED.points_possible,
			submission_types = EXCLUDED.submission_types,
			is_submitted = EXCLUDED.is_submitted,
			score = EXCLUDED.score,
			grade = EXCLUDED.grade,
			graded_at = EXCLUDED.graded_at,
			updated_at = EXCLUDED.updated_at
		RETURNING *`,
		assignment.ID, assignment.CanvasID, assignment.CourseID, assignment.Name,
		assignment.Description, assignment.DueAt, assignment.PointsPossible,
		assignment.SubmissionTypes, assignment.IsSubmitted, assignment.Score,
		assignment.Grade, assignment.GradedAt, assignment.CreatedAt, assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assignmentRepo.Upsert: %w", err)
	}
	return nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := r.db.GetContext(ctx, &assignment,
		`SELECT a.*, c.name AS course_name
		 FROM assignments a
		 JOIN courses c ON c.id = a.course_id
		 WHERE a.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("assignmentRepo.GetByID: %w", err)
	}
	return &assignment, nil
}

// ListCandidates returns the student's assignments whose due date falls
// within windowDays of the anchor, plus undated assignments (those can
// still match on title alone). With no anchor the window trails from now,
// covering recently due work.
func (r *assignmentRepo) ListCandidates(ctx context.Context, studentID uuid.UUID, around *time.Time, windowDays int) ([]domain.Assignment, error) {
	window := time.Duration(windowDays) * 24 * time.Hour

	var from, to time.Time
	if around != nil {
		from = around.Add(-window)
		to = around.Add(window)
	} else {
		now := time.Now().UTC()
		from = now.Add(-window)
		to = now
	}

	var assignments []domain.Assignment
	err := r.db.SelectContext(ctx, &assignments,
		`SELECT a.*, c.name AS course_name
		 FROM assignments a
		 JOIN courses c ON c.id = a.course_id
		 WHERE c.student_id = $1 AND c.is_active
		   AND (a.due_at IS NULL OR a.due_at BETWEEN $2 AND $3)
		 ORDER BY a.due_at NULLS LAST`,
		studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("assignmentRepo.ListCandidates: %w", err)
	}
	return assignments, nil
}
