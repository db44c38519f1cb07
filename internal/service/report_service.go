package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
	"github.com/jdeans2217/canvas-parent-cli/internal/reportexport"
)

// ReportService provides scan history and grade trend reporting.
type ReportService interface {
	ScanHistory(ctx context.Context, studentID uuid.UUID, offset, limit int) ([]domain.ScannedDocument, int, error)
	GradeTrends(ctx context.Context, studentID uuid.UUID, since time.Time) ([]domain.GradeSnapshot, error)
	// ExportCSV streams a student's scan history as CSV. Returns the
	// suggested attachment filename.
	ExportCSV(ctx context.Context, w io.Writer, studentID uuid.UUID) (string, error)
	// ExportXLSX streams a workbook with scan history and grade trends.
	ExportXLSX(ctx context.Context, w io.Writer, studentID uuid.UUID, since time.Time) (string, error)
}

type reportService struct {
	scanRepo     port.ScanRepository
	snapshotRepo port.SnapshotRepository
	studentRepo  port.StudentRepository
}

// NewReportService creates a new ReportService implementation.
func NewReportService(scanRepo port.ScanRepository, snapshotRepo port.SnapshotRepository, studentRepo port.StudentRepository) ReportService {
	return &reportService{
		scanRepo:     scanRepo,
		snapshotRepo: snapshotRepo,
		studentRepo:  studentRepo,
	}
}

func (s *reportService) ScanHistory(ctx context.Context, studentID uuid.UUID, offset, limit int) ([]domain.ScannedDocument, int, error) {
	return s.scanRepo.ListByStudent(ctx, studentID, offset, limit)
}

func (s *reportService) GradeTrends(ctx context.Context, studentID uuid.UUID, since time.Time) ([]domain.GradeSnapshot, error) {
	return s.snapshotRepo.ListByStudent(ctx, studentID, since)
}

func (s *reportService) ExportCSV(ctx context.Context, w io.Writer, studentID uuid.UUID) (string, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return "", err
	}
	docs, _, err := s.scanRepo.ListByStudent(ctx, studentID, 0, 0)
	if err != nil {
		return "", fmt.Errorf("report.ExportCSV: %w", err)
	}

	if _, err := w.Write(reportexport.BOM); err != nil {
		return "", fmt.Errorf("report.ExportCSV: writing BOM: %w", err)
	}
	writer := reportexport.NewWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return "", fmt.Errorf("report.ExportCSV: %w", err)
	}
	if err := writer.WriteScans(docs); err != nil {
		return "", fmt.Errorf("report.ExportCSV: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("report.ExportCSV: %w", err)
	}

	return reportexport.BuildFilename(student.Name, "csv"), nil
}

func (s *reportService) ExportXLSX(ctx context.Context, w io.Writer, studentID uuid.UUID, since time.Time) (string, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return "", err
	}
	docs, _, err := s.scanRepo.ListByStudent(ctx, studentID, 0, 0)
	if err != nil {
		return "", fmt.Errorf("report.ExportXLSX: %w", err)
	}
	snapshots, err := s.snapshotRepo.ListByStudent(ctx, studentID, since)
	if err != nil {
		return "", fmt.Errorf("report.ExportXLSX: %w", err)
	}

	if err := reportexport.WriteWorkbook(w, docs, snapshots); err != nil {
		return "", fmt.Errorf("report.ExportXLSX: %w", err)
	}
	return reportexport.BuildFilename(student.Name, "xlsx"), nil
}
