package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (*port.ExtractedText, error) {
	args := m.Called(ctx, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractedText), args.Error(1)
}

// MockAssignmentCatalog is a mock implementation of port.AssignmentCatalog.
type MockAssignmentCatalog struct {
	mock.Mock
}

func (m *MockAssignmentCatalog) ListObservees(ctx context.Context) ([]port.CatalogStudent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.CatalogStudent), args.Error(1)
}

func (m *MockAssignmentCatalog) ListCourses(ctx context.Context, studentCanvasID int64) ([]port.CatalogCourse, error) {
	args := m.Called(ctx, studentCanvasID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.CatalogCourse), args.Error(1)
}

func (m *MockAssignmentCatalog) ListAssignments(ctx context.Context, courseCanvasID, studentCanvasID int64) ([]port.CatalogEntry, error) {
	args := m.Called(ctx, courseCanvasID, studentCanvasID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.CatalogEntry), args.Error(1)
}

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}

func (m *MockObjectStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockObjectStorage) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	args := m.Called(ctx, bucket, key, expirySeconds)
	return args.String(0), args.Error(1)
}

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReviewNotification(ctx context.Context, to string, n *port.ReviewNotification) error {
	args := m.Called(ctx, to, n)
	return args.Error(0)
}

func (m *MockEmailSender) SendDiscrepancyAlert(ctx context.Context, to string, a *port.DiscrepancyAlert) error {
	args := m.Called(ctx, to, a)
	return args.Error(0)
}
