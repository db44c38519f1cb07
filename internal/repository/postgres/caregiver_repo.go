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

type caregiverRepo struct {
	db *sqlx.DB
}

// NewCaregiverRepo creates a new PostgreSQL-backed CaregiverRepository.
func NewCaregiverRepo(db *sqlx.DB) port.CaregiverRepository {
	return &caregiverRepo{db: db}
}

func (r *caregiverRepo) Create(ctx context.Context, caregiver *domain.Caregiver) error {
	now := time.Now().UTC()
	caregiver.CreatedAt = now
	caregiver.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO caregivers (id, email, password_hash, full_name, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		caregiver.ID, caregiver.Email, caregiver.PasswordHash, caregiver.FullName,
		caregiver.IsActive, caregiver.CreatedAt, caregiver.UpdatedAt)
	if err != nil {
		return fmt.Errorf("caregiverRepo.Create: %w", err)
	}
	return nil
}

func (r *caregiverRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error) {
	var caregiver domain.Caregiver
	err := r.db.GetContext(ctx, &caregiver, "SELECT * FROM caregivers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("caregiverRepo.GetByID: %w", err)
	}
	return &caregiver, nil
}

func (r *caregiverRepo) GetByEmail(ctx context.Context, email string) (*domain.Caregiver, error) {
	var caregiver domain.Caregiver
	err := r.db.GetContext(ctx, &caregiver, "SELECT * FROM caregivers WHERE lower(email) = lower($1)", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("caregiverRepo.GetByEmail: %w", err)
	}
	return &caregiver, nil
}
