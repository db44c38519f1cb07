package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jdeans2217/canvas-parent-cli/internal/catalog/canvas"
	"github.com/jdeans2217/canvas-parent-cli/internal/config"
	"github.com/jdeans2217/canvas-parent-cli/internal/email/noop"
	"github.com/jdeans2217/canvas-parent-cli/internal/email/ses"
	"github.com/jdeans2217/canvas-parent-cli/internal/handler"
	"github.com/jdeans2217/canvas-parent-cli/internal/ocr/mistral"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
	"github.com/jdeans2217/canvas-parent-cli/internal/repository/postgres"
	"github.com/jdeans2217/canvas-parent-cli/internal/router"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
	s3storage "github.com/jdeans2217/canvas-parent-cli/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	caregiverRepo := postgres.NewCaregiverRepo(db)
	studentRepo := postgres.NewStudentRepo(db)
	courseRepo := postgres.NewCourseRepo(db)
	assignRepo := postgres.NewAssignmentRepo(db)
	scanRepo := postgres.NewScanRepo(db)
	snapshotRepo := postgres.NewSnapshotRepo(db)

	// Initialize adapters
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	extractor := mistral.NewExtractor(cfg.OCR)
	catalog := canvas.NewCatalog(cfg.Canvas)

	var sender port.EmailSender
	if cfg.Email.Provider == "ses" {
		sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		sender = noop.NewNoopSender()
	}

	// Initialize services
	authSvc := service.NewAuthService(caregiverRepo, cfg.JWT)
	reconcileSvc := service.NewReconcileService(
		extractor, scanRepo, studentRepo, courseRepo, assignRepo,
		s3Client, sender, authSvc, cfg.S3, cfg.Scan, cfg.Email,
	)
	syncSvc := service.NewSyncService(catalog, studentRepo, courseRepo, assignRepo, snapshotRepo)
	reportSvc := service.NewReportService(scanRepo, snapshotRepo, studentRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	scanH := handler.NewScanHandler(reconcileSvc, authSvc, scanRepo, s3Client, cfg.S3.PresignExpiry)
	studentH := handler.NewStudentHandler(studentRepo, courseRepo, syncSvc)
	reportH := handler.NewReportHandler(reportSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(authSvc, authH, scanH, studentH, reportH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the scan queue worker alongside the HTTP server.
	worker := service.NewScanQueueWorker(scanRepo, s3Client, reconcileSvc, service.ScanQueueConfig{
		PollInterval: cfg.Queue.PollInterval(),
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(workerDone)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	return nil
}
