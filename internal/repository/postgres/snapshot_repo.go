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

type snapshotRepo struct {
	db *sqlx.DB
}

// NewSnapshotRepo creates a new PostgreSQL-backed SnapshotRepository.
func NewSnapshotRepo(db *sqlx.DB) port.SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Insert(ctx context.Context, snapshot *domain.GradeSnapshot) error {
	snapshot.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO grade_snapshots (
			id, student_id, course_id, current_score, letter_grade,
			assignments_total, assignments_graded, assignments_missing,
			snapshot_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		snapshot.ID, snapshot.StudentID, snapshot.CourseID, snapshot.CurrentScore,
		snapshot.LetterGrade, snapshot.AssignmentsTotal, snapshot.AssignmentsGraded,
		snapshot.AssignmentsMissing, snapshot.SnapshotDate, snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("snapshotRepo.Insert: %w", err)
	}
	return nil
}

func (r *snapshotRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, since time.Time) ([]domain.GradeSnapshot, error) {
	var snapshots []domain.GradeSnapshot
	err := r.db.SelectContext(ctx, &snapshots,
		`SELECT g.*, c.name AS course_name
		 FROM grade_snapshots g
		 JOIN courses c ON c.id = g.course_id
		 WHERE g.student_id = $1 AND g.snapshot_date >= $2
		 ORDER BY c.name, g.snapshot_date`,
		studentID, since)
	if err != nil {
		return nil, fmt.Errorf("snapshotRepo.ListByStudent: %w", err)
	}
	return snapshots, nil
}
