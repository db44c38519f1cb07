package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
	"github.com/jdeans2217/canvas-parent-cli/mocks"
)

func TestScanQueueWorker_DispatchesClaimedScans(t *testing.T) {
	scanRepo := new(mocks.MockScanRepo)
	storage := new(mocks.MockObjectStorage)
	reconcile := new(mocks.MockReconcileService)

	doc := domain.ScannedDocument{
		ID:       uuid.New(),
		S3Bucket: "test-bucket",
		S3Key:    "scans/abc/test.jpg",
		Status:   domain.ScanStatusProcessing,
	}

	scanRepo.On("ClaimPending", mock.Anything, 2).
		Return([]domain.ScannedDocument{doc}, nil).Once()
	scanRepo.On("ClaimPending", mock.Anything, mock.Anything).
		Return([]domain.ScannedDocument{}, nil).Maybe()
	storage.On("Download", mock.Anything, "test-bucket", "scans/abc/test.jpg").
		Return([]byte("file bytes"), nil)
	reconcile.On("Process", mock.Anything, mock.AnythingOfType("*domain.ScannedDocument"), []byte("file bytes")).
		Return(nil)

	worker := service.NewScanQueueWorker(scanRepo, storage, reconcile, service.ScanQueueConfig{
		PollInterval: 10 * time.Millisecond,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	scanRepo.AssertExpectations(t)
	reconcile.AssertCalled(t, "Process", mock.Anything, mock.AnythingOfType("*domain.ScannedDocument"), []byte("file bytes"))
}

func TestScanQueueWorker_DownloadFailureSkipsProcess(t *testing.T) {
	scanRepo := new(mocks.MockScanRepo)
	storage := new(mocks.MockObjectStorage)
	reconcile := new(mocks.MockReconcileService)

	doc := domain.ScannedDocument{
		ID:       uuid.New(),
		S3Bucket: "test-bucket",
		S3Key:    "scans/gone/missing.jpg",
		Status:   domain.ScanStatusProcessing,
	}

	scanRepo.On("ClaimPending", mock.Anything, mock.Anything).
		Return([]domain.ScannedDocument{doc}, nil).Once()
	scanRepo.On("ClaimPending", mock.Anything, mock.Anything).
		Return([]domain.ScannedDocument{}, nil).Maybe()
	storage.On("Download", mock.Anything, "test-bucket", "scans/gone/missing.jpg").
		Return(nil, errors.New("no such key"))

	worker := service.NewScanQueueWorker(scanRepo, storage, reconcile, service.ScanQueueConfig{
		PollInterval: 10 * time.Millisecond,
		Concurrency:  1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	reconcile.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}
