package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// MockScanRepo is a mock implementation of port.ScanRepository.
type MockScanRepo struct {
	mock.Mock
}

func (m *MockScanRepo) Create(ctx context.Context, doc *domain.ScannedDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockScanRepo) UpdateResult(ctx context.Context, doc *domain.ScannedDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockScanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScannedDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScannedDocument), args.Error(1)
}

func (m *MockScanRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, offset, limit int) ([]domain.ScannedDocument, int, error) {
	args := m.Called(ctx, studentID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ScannedDocument), args.Int(1), args.Error(2)
}

func (m *MockScanRepo) ListNeedsReview(ctx context.Context, offset, limit int) ([]domain.ScannedDocument, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ScannedDocument), args.Int(1), args.Error(2)
}

func (m *MockScanRepo) ClaimPending(ctx context.Context, limit int) ([]domain.ScannedDocument, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScannedDocument), args.Error(1)
}

func (m *MockScanRepo) Assign(ctx context.Context, scanID, assignmentID uuid.UUID, verifiedBy string) error {
	args := m.Called(ctx, scanID, assignmentID, verifiedBy)
	return args.Error(0)
}

func (m *MockScanRepo) KnownFingerprints(ctx context.Context, studentID uuid.UUID) (map[string]struct{}, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}
