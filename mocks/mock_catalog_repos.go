package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// MockCaregiverRepo is a mock implementation of port.CaregiverRepository.
type MockCaregiverRepo struct {
	mock.Mock
}

func (m *MockCaregiverRepo) Create(ctx context.Context, caregiver *domain.Caregiver) error {
	args := m.Called(ctx, caregiver)
	return args.Error(0)
}

func (m *MockCaregiverRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caregiver), args.Error(1)
}

func (m *MockCaregiverRepo) GetByEmail(ctx context.Context, email string) (*domain.Caregiver, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caregiver), args.Error(1)
}

// MockStudentRepo is a mock implementation of port.StudentRepository.
type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Upsert(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) List(ctx context.Context) ([]domain.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

// MockCourseRepo is a mock implementation of port.CourseRepository.
type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) Upsert(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepo) ListActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Course, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Course), args.Error(1)
}

func (m *MockCourseRepo) ListActiveNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockAssignmentRepo is a mock implementation of port.AssignmentRepository.
type MockAssignmentRepo struct {
	mock.Mock
}

func (m *MockAssignmentRepo) Upsert(ctx context.Context, assignment *domain.Assignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *MockAssignmentRepo) ListCandidates(ctx context.Context, studentID uuid.UUID, around *time.Time, windowDays int) ([]domain.Assignment, error) {
	args := m.Called(ctx, studentID, around, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

// MockSnapshotRepo is a mock implementation of port.SnapshotRepository.
type MockSnapshotRepo struct {
	mock.Mock
}

func (m *MockSnapshotRepo) Insert(ctx context.Context, snapshot *domain.GradeSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, since time.Time) ([]domain.GradeSnapshot, error) {
	args := m.Called(ctx, studentID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GradeSnapshot), args.Error(1)
}
