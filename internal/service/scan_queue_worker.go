package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

// ScanQueueConfig holds settings for the scan queue worker.
type ScanQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// ScanQueueWorker polls for pending scans and dispatches each one through
// the reconciliation pipeline.
type ScanQueueWorker struct {
	scanRepo  port.ScanRepository
	storage   port.ObjectStorage
	reconcile ReconcileService
	cfg       ScanQueueConfig
	wg        sync.WaitGroup
}

// NewScanQueueWorker creates a new ScanQueueWorker.
func NewScanQueueWorker(scanRepo port.ScanRepository, storage port.ObjectStorage, reconcile ReconcileService, cfg ScanQueueConfig) *ScanQueueWorker {
	return &ScanQueueWorker{
		scanRepo:  scanRepo,
		storage:   storage,
		reconcile: reconcile,
		cfg:       cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight reconciliations have finished.
func (w *ScanQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("scanQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("scanQueueWorker: shutting down, waiting for in-flight scans...")
			w.wg.Wait()
			log.Printf("scanQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			docs, err := w.scanRepo.ClaimPending(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll, exit gracefully
					continue
				}
				log.Printf("scanQueueWorker: ClaimPending error: %v", err)
				continue
			}

			for i := range docs {
				doc := docs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight scans complete even during shutdown.
					scanCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("scanQueueWorker: dispatching scan %s", doc.ID)
					data, err := w.storage.Download(scanCtx, doc.S3Bucket, doc.S3Key)
					if err != nil {
						log.Printf("scanQueueWorker: download for scan %s: %v", doc.ID, err)
						return
					}
					if err := w.reconcile.Process(scanCtx, &doc, data); err != nil {
						log.Printf("scanQueueWorker: scan %s: %v", doc.ID, err)
					}
				}()
			}
		}
	}
}
