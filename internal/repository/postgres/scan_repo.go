package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

type scanRepo struct {
	db *sqlx.DB
}

// NewScanRepo creates a new PostgreSQL-backed ScanRepository.
func NewScanRepo(db *sqlx.DB) port.ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, doc *domain.ScannedDocument) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scans (
			id, student_id, file_name, file_size, content_type, file_hash,
			scan_date, source, status, disposition, detection_confidence, detection_method,
			s3_bucket, s3_key, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16
		)`,
		doc.ID, doc.StudentID, doc.FileName, doc.FileSize, doc.ContentType, doc.FileHash,
		doc.ScanDate, doc.Source, doc.Status, doc.Disposition, doc.DetectionConfidence, doc.DetectionMethod,
		doc.S3Bucket, doc.S3Key, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("scanRepo.Create: %w", err)
	}
	return nil
}

// UpdateResult persists a completed reconciliation pass. A unique violation
// on the (student_id, file_hash) partial index means an identical scan
// already committed a non-duplicate result; callers get ErrDuplicateScan
// and reclassify.
func (r *scanRepo) UpdateResult(ctx context.Context, doc *domain.ScannedDocument) error {
	doc.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE scans SET
			student_id = $1, assignment_id = $2, file_hash = $3,
			status = $4, disposition = $5,
			detection_confidence = $6, detection_method = $7,
			ocr_text = $8, detected_title = $9, detected_date = $10,
			detected_score = $11, detected_max_score = $12, detected_grade = $13,
			canvas_score = $14, score_delta = $15, discrepancy = $16,
			match_confidence = $17, match_method = $18,
			failure_reason = $19, updated_at = $20
		 WHERE id = $21`,
		doc.StudentID, doc.AssignmentID, doc.FileHash,
		doc.Status, doc.Disposition,
		doc.DetectionConfidence, doc.DetectionMethod,
		doc.OCRText, doc.DetectedTitle, doc.DetectedDate,
		doc.DetectedScore, doc.DetectedMaxScore, doc.DetectedGrade,
		doc.CanvasScore, doc.ScoreDelta, doc.Discrepancy,
		doc.MatchConfidence, doc.MatchMethod,
		doc.FailureReason, doc.UpdatedAt,
		doc.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "scans_student_fingerprint") {
			return domain.ErrDuplicateScan
		}
		return fmt.Errorf("scanRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *scanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScannedDocument, error) {
	var doc domain.ScannedDocument
	err := r.db.GetContext(ctx, &doc,
		`SELECT s.*,
			COALESCE(st.name, '') AS student_name,
			COALESCE(a.name, '') AS assignment_name
		 FROM scans s
		 LEFT JOIN students st ON st.id = s.student_id
		 LEFT JOIN assignments a ON a.id = s.assignment_id
		 WHERE s.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanRepo.GetByID: %w", err)
	}
	return &doc, nil
}

// ListByStudent returns a page of the student's scans, newest first.
// limit <= 0 means no page bound (used by exports).
func (r *scanRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, offset, limit int) ([]domain.ScannedDocument, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM scans WHERE student_id = $1", studentID)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.ListByStudent count: %w", err)
	}

	query := `SELECT s.*,
			COALESCE(st.name, '') AS student_name,
			COALESCE(a.name, '') AS assignment_name
		 FROM scans s
		 LEFT JOIN students st ON st.id = s.student_id
		 LEFT JOIN assignments a ON a.id = s.assignment_id
		 WHERE s.student_id = $1
		 ORDER BY s.scan_date DESC`

	var docs []domain.ScannedDocument
	if limit > 0 {
		err = r.db.SelectContext(ctx, &docs, query+" LIMIT $2 OFFSET $3", studentID, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &docs, query, studentID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.ListByStudent: %w", err)
	}
	return docs, total, nil
}

func (r *scanRepo) ListNeedsReview(ctx context.Context, offset, limit int) ([]domain.ScannedDocument, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM scans WHERE disposition = $1 AND NOT verified",
		domain.DispositionNeedsReview)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.ListNeedsReview count: %w", err)
	}

	var docs []domain.ScannedDocument
	err = r.db.SelectContext(ctx, &docs,
		`SELECT s.*,
			COALESCE(st.name, '') AS student_name,
			COALESCE(a.name, '') AS assignment_name
		 FROM scans s
		 LEFT JOIN students st ON st.id = s.student_id
		 LEFT JOIN assignments a ON a.id = s.assignment_id
		 WHERE s.disposition = $1 AND NOT s.verified
		 ORDER BY s.scan_date DESC LIMIT $2 OFFSET $3`,
		domain.DispositionNeedsReview, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.ListNeedsReview: %w", err)
	}
	return docs, total, nil
}

// ClaimPending atomically flips up to limit pending scans to processing so
// concurrent workers never pick up the same scan twice.
func (r *scanRepo) ClaimPending(ctx context.Context, limit int) ([]domain.ScannedDocument, error) {
	var docs []domain.ScannedDocument
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE scans SET status = $1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM scans
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ScanStatusProcessing, domain.ScanStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("scanRepo.ClaimPending: %w", err)
	}
	return docs, nil
}

// Assign attaches a scan to an assignment chosen by a human and marks the
// result verified. The manual choice overrides whatever matching produced.
func (r *scanRepo) Assign(ctx context.Context, scanID, assignmentID uuid.UUID, verifiedBy string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE scans SET
			assignment_id = $1,
			disposition = $2,
			detection_method = $3,
			match_method = 'manual',
			verified = TRUE,
			verified_at = $4,
			updated_at = $4
		 WHERE id = $5 AND NOT verified`,
		assignmentID, domain.DispositionAutoMatched, domain.DetectionManualOverride, now, scanID)
	if err != nil {
		return fmt.Errorf("scanRepo.Assign: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrScanAlreadyVerified
	}
	return nil
}

// KnownFingerprints returns the content hashes of the student's already
// processed scans. Pending and failed scans are excluded so a scan never
// collides with itself; a concurrent race on equal hashes is settled by the
// partial unique index at commit time instead.
func (r *scanRepo) KnownFingerprints(ctx context.Context, studentID uuid.UUID) (map[string]struct{}, error) {
	var hashes []string
	err := r.db.SelectContext(ctx, &hashes,
		`SELECT file_hash FROM scans
		 WHERE student_id = $1 AND status = $2 AND disposition <> $3`,
		studentID, domain.ScanStatusProcessed, domain.DispositionDuplicate)
	if err != nil {
		return nil, fmt.Errorf("scanRepo.KnownFingerprints: %w", err)
	}

	known := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		known[h] = struct{}{}
	}
	return known, nil
}
