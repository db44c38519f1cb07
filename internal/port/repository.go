package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// CaregiverRepository defines persistence for the parent account.
type CaregiverRepository interface {
	Create(ctx context.Context, caregiver *domain.Caregiver) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error)
	GetByEmail(ctx context.Context, email string) (*domain.Caregiver, error)
}

// StudentRepository defines persistence for synced students.
type StudentRepository interface {
	Upsert(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
}

// CourseRepository defines persistence for synced course enrollments.
type CourseRepository interface {
	Upsert(ctx context.Context, course *domain.Course) error
	ListActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Course, error)
	ListActiveNames(ctx context.Context) ([]string, error)
}

// AssignmentRepository defines persistence for the local assignment cache.
// ListCandidates scopes candidates to a student and a due-date window around
// the detected document date (or recent assignments when no date parsed);
// results carry the joined course name for matching.
type AssignmentRepository interface {
	Upsert(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	ListCandidates(ctx context.Context, studentID uuid.UUID, around *time.Time, windowDays int) ([]domain.Assignment, error)
}

// ScanRepository defines persistence for reconciliation outcomes.
type ScanRepository interface {
	Create(ctx context.Context, doc *domain.ScannedDocument) error
	UpdateResult(ctx context.Context, doc *domain.ScannedDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScannedDocument, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, offset, limit int) ([]domain.ScannedDocument, int, error)
	ListNeedsReview(ctx context.Context, offset, limit int) ([]domain.ScannedDocument, int, error)
	ClaimPending(ctx context.Context, limit int) ([]domain.ScannedDocument, error)
	Assign(ctx context.Context, scanID, assignmentID uuid.UUID, verifiedBy string) error
	KnownFingerprints(ctx context.Context, studentID uuid.UUID) (map[string]struct{}, error)
}

// SnapshotRepository defines persistence for grade snapshots.
type SnapshotRepository interface {
	Insert(ctx context.Context, snapshot *domain.GradeSnapshot) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, since time.Time) ([]domain.GradeSnapshot, error)
}
