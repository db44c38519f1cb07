package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input service.LoginInput) (*service.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) IssueAssignToken(scanID uuid.UUID) (string, error) {
	args := m.Called(scanID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateAssignToken(tokenString string) (uuid.UUID, error) {
	args := m.Called(tokenString)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockReconcileService is a mock implementation of service.ReconcileService.
type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Submit(ctx context.Context, input *service.ReconcileInput) (*domain.ScannedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScannedDocument), args.Error(1)
}

func (m *MockReconcileService) ReconcileFile(ctx context.Context, input *service.ReconcileInput) (*domain.ScannedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScannedDocument), args.Error(1)
}

func (m *MockReconcileService) Process(ctx context.Context, doc *domain.ScannedDocument, data []byte) error {
	args := m.Called(ctx, doc, data)
	return args.Error(0)
}

func (m *MockReconcileService) AssignManually(ctx context.Context, scanID, assignmentID uuid.UUID, verifiedBy string) (*domain.ScannedDocument, error) {
	args := m.Called(ctx, scanID, assignmentID, verifiedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScannedDocument), args.Error(1)
}
