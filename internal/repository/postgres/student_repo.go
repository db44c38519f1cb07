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

type studentRepo struct {
	db *sqlx.DB
}

// NewStudentRepo creates a new PostgreSQL-backed StudentRepository.
func NewStudentRepo(db *sqlx.DB) port.StudentRepository {
	return &studentRepo{db: db}
}

// Upsert keys on the Canvas ID so repeated syncs keep the local UUID stable.
// The student's ID field is overwritten with the persisted row's ID.
func (r *studentRepo) Upsert(ctx context.Context, student *domain.Student) error {
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	err := r.db.GetContext(ctx, student,
		`INSERT INTO students (id, canvas_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (canvas_id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
		 RETURNING *`,
		student.ID, student.CanvasID, student.Name, student.CreatedAt, student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("studentRepo.Upsert: %w", err)
	}
	return nil
}

func (r *studentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	var student domain.Student
	err := r.db.GetContext(ctx, &student, "SELECT * FROM students WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("studentRepo.GetByID: %w", err)
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student
	err := r.db.SelectContext(ctx, &students, "SELECT * FROM students ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("studentRepo.List: %w", err)
	}
	return students, nil
}
