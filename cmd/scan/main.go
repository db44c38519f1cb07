// Command scan reconciles local image or PDF files against the assignment
// cache from the terminal, without going through the HTTP server.
// Usage: go run ./cmd/scan [-student <uuid>] [-sync] <file> [<file> ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/catalog/canvas"
	"github.com/jdeans2217/canvas-parent-cli/internal/config"
	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/email/noop"
	"github.com/jdeans2217/canvas-parent-cli/internal/ocr/mistral"
	"github.com/jdeans2217/canvas-parent-cli/internal/repository/postgres"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
	s3storage "github.com/jdeans2217/canvas-parent-cli/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	studentFlag := flag.String("student", "", "student UUID to attribute scans to (detected from the page when omitted)")
	syncFlag := flag.Bool("sync", false, "refresh the Canvas cache before scanning")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		return fmt.Errorf("no files given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	caregiverRepo := postgres.NewCaregiverRepo(db)
	studentRepo := postgres.NewStudentRepo(db)
	courseRepo := postgres.NewCourseRepo(db)
	assignRepo := postgres.NewAssignmentRepo(db)
	scanRepo := postgres.NewScanRepo(db)
	snapshotRepo := postgres.NewSnapshotRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 client: %w", err)
	}

	authSvc := service.NewAuthService(caregiverRepo, cfg.JWT)
	reconcileSvc := service.NewReconcileService(
		mistral.NewExtractor(cfg.OCR), scanRepo, studentRepo, courseRepo, assignRepo,
		s3Client, noop.NewNoopSender(), authSvc, cfg.S3, cfg.Scan, cfg.Email,
	)

	ctx := context.Background()

	if *syncFlag {
		syncSvc := service.NewSyncService(
			canvas.NewCatalog(cfg.Canvas), studentRepo, courseRepo, assignRepo, snapshotRepo)
		start := time.Now()
		result, err := syncSvc.SyncAll(ctx)
		if err != nil {
			return fmt.Errorf("syncing catalog: %w", err)
		}
		fmt.Printf("synced %d students, %d courses, %d assignments in %s\n",
			result.Students, result.Courses, result.Assignments, time.Since(start).Round(time.Millisecond))
	}

	var studentID *uuid.UUID
	if *studentFlag != "" {
		id, err := uuid.Parse(*studentFlag)
		if err != nil {
			return fmt.Errorf("invalid -student value %q: %w", *studentFlag, err)
		}
		studentID = &id
	}

	failures := 0
	for _, path := range files {
		if err := scanOne(ctx, reconcileSvc, studentID, path); err != nil {
			log.Printf("ERROR: %s: %v", path, err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

func scanOne(ctx context.Context, reconcile service.ReconcileService, studentID *uuid.UUID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		return domain.ErrUnsupportedFileType
	}

	doc, err := reconcile.ReconcileFile(ctx, &service.ReconcileInput{
		StudentID:   studentID,
		FileName:    filepath.Base(path),
		ContentType: domain.ContentTypeFor[ft],
		Data:        data,
		Source:      domain.SourceManualUpload,
	})
	if err != nil {
		return err
	}

	printResult(path, doc)
	return nil
}

func printResult(path string, doc *domain.ScannedDocument) {
	fmt.Printf("%s: %s", path, doc.Disposition)
	if doc.MatchConfidence != nil {
		fmt.Printf(" (%.0f%% confidence)", *doc.MatchConfidence*100)
	}
	if doc.DetectedTitle != "" {
		fmt.Printf(" title=%q", doc.DetectedTitle)
	}
	if doc.DetectedScore != nil && doc.DetectedMaxScore != nil {
		fmt.Printf(" score=%g/%g", *doc.DetectedScore, *doc.DetectedMaxScore)
	}
	if doc.Discrepancy == domain.DiscrepancyDiscrepant && doc.CanvasScore != nil {
		fmt.Printf(" MISMATCH canvas=%g", *doc.CanvasScore)
	}
	fmt.Println()
}
