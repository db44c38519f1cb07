package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

type courseRepo struct {
	db *sqlx.DB
}

// NewCourseRepo creates a new PostgreSQL-backed CourseRepository.
func NewCourseRepo(db *sqlx.DB) port.CourseRepository {
	return &courseRepo{db: db}
}

// Upsert keys on (canvas_id, student_id): siblings can share a Canvas
// course, but each enrollment is tracked as its own row.
func (r *courseRepo) Upsert(ctx context.Context, course *domain.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	err := r.db.GetContext(ctx, course,
		`INSERT INTO courses (id, canvas_id, student_id, name, term, term_start, term_end, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (canvas_id, student_id) DO UPDATE SET
			name = EXCLUDED.name,
			term = EXCLUDED.term,
			term_start = EXCLUDED.term_start,
			term_end = EXCLUDED.term_end,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		 RETURNING *`,
		course.ID, course.CanvasID, course.StudentID, course.Name, course.Term,
		course.TermStart, course.TermEnd, course.IsActive, course.CreatedAt, course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("courseRepo.Upsert: %w", err)
	}
	return nil
}

func (r *courseRepo) ListActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.SelectContext(ctx, &courses,
		"SELECT * FROM courses WHERE student_id = $1 AND is_active ORDER BY name", studentID)
	if err != nil {
		return nil, fmt.Errorf("courseRepo.ListActiveByStudent: %w", err)
	}
	return courses, nil
}

func (r *courseRepo) ListActiveNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names,
		"SELECT DISTINCT name FROM courses WHERE is_active ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("courseRepo.ListActiveNames: %w", err)
	}
	return names, nil
}
