package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/config"
	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
	"github.com/jdeans2217/canvas-parent-cli/internal/scan"
)

// ReconcileInput is the DTO for submitting one scanned document.
type ReconcileInput struct {
	StudentID   *uuid.UUID // nil means attribute via student detection
	FileName    string
	ContentType string
	Data        []byte
	Source      domain.ScanSource
	ReceivedAt  time.Time
}

// AssignTokenIssuer mints signed one-click assignment links for
// notification emails.
type AssignTokenIssuer interface {
	IssueAssignToken(scanID uuid.UUID) (string, error)
}

// ReconcileService runs the per-document reconciliation state machine:
// Received -> Parsed -> {Duplicate | Candidate-Search} -> terminal
// disposition. It is stateless across documents; each call fetches the
// fingerprint set fresh.
type ReconcileService interface {
	// Submit stores a pending scan and archives its bytes; the queue worker
	// picks it up later.
	Submit(ctx context.Context, input *ReconcileInput) (*domain.ScannedDocument, error)
	// ReconcileFile submits and processes a scan in one call (CLI path).
	ReconcileFile(ctx context.Context, input *ReconcileInput) (*domain.ScannedDocument, error)
	// Process runs the state machine over an already-stored pending scan.
	Process(ctx context.Context, doc *domain.ScannedDocument, data []byte) error
	// AssignManually attaches a scan to an assignment chosen by a human.
	AssignManually(ctx context.Context, scanID, assignmentID uuid.UUID, verifiedBy string) (*domain.ScannedDocument, error)
}

type reconcileService struct {
	ocr         port.TextExtractor
	scanRepo    port.ScanRepository
	studentRepo port.StudentRepository
	courseRepo  port.CourseRepository
	assignRepo  port.AssignmentRepository
	storage     port.ObjectStorage
	email       port.EmailSender
	tokens      AssignTokenIssuer
	s3Cfg       config.S3Config
	scanCfg     config.ScanConfig
	emailCfg    config.EmailConfig
}

// NewReconcileService creates a ReconcileService implementation.
func NewReconcileService(
	ocr port.TextExtractor,
	scanRepo port.ScanRepository,
	studentRepo port.StudentRepository,
	courseRepo port.CourseRepository,
	assignRepo port.AssignmentRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	tokens AssignTokenIssuer,
	s3Cfg config.S3Config,
	scanCfg config.ScanConfig,
	emailCfg config.EmailConfig,
) ReconcileService {
	return &reconcileService{
		ocr:         ocr,
		scanRepo:    scanRepo,
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		assignRepo:  assignRepo,
		storage:     storage,
		email:       email,
		tokens:      tokens,
		s3Cfg:       s3Cfg,
		scanCfg:     scanCfg,
		emailCfg:    emailCfg,
	}
}

func (s *reconcileService) Submit(ctx context.Context, input *ReconcileInput) (*domain.ScannedDocument, error) {
	doc, err := s.createDocument(ctx, input)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *reconcileService) ReconcileFile(ctx context.Context, input *ReconcileInput) (*domain.ScannedDocument, error) {
	doc, err := s.createDocument(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.Process(ctx, doc, input.Data); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *reconcileService) createDocument(ctx context.Context, input *ReconcileInput) (*domain.ScannedDocument, error) {
	if len(input.Data) == 0 {
		return nil, domain.ErrEmptyScan
	}
	if _, ok := domain.AllowedContentTypes[input.ContentType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if maxBytes := s.scanCfg.MaxFileSizeMB * 1024 * 1024; int64(len(input.Data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	doc := &domain.ScannedDocument{
		ID:              uuid.New(),
		StudentID:       input.StudentID,
		FileName:        filepath.Base(input.FileName),
		FileSize:        int64(len(input.Data)),
		ContentType:     input.ContentType,
		FileHash:        string(scan.Fingerprint(input.Data)),
		ScanDate:        receivedAt,
		Source:          input.Source,
		Status:          domain.ScanStatusPending,
		DetectionMethod: domain.DetectionAmbiguous,
	}
	if input.StudentID != nil {
		doc.DetectionMethod = domain.DetectionDeclared
	}

	// Archive the original bytes before anything else so a crash mid-pipeline
	// never loses the only copy of the paper.
	doc.S3Bucket = s.s3Cfg.Bucket
	doc.S3Key = fmt.Sprintf("scans/%s/%s", doc.ID, doc.FileName)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      doc.S3Bucket,
		Key:         doc.S3Key,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
		Size:        doc.FileSize,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	if err := s.scanRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("reconcile.Submit: %w", err)
	}
	return doc, nil
}

// Process drives one scan through the state machine. doc must already be
// persisted with status pending; data is the original file bytes.
func (s *reconcileService) Process(ctx context.Context, doc *domain.ScannedDocument, data []byte) error {
	if len(data) == 0 {
		return s.fail(ctx, doc, domain.ErrEmptyScan)
	}
	doc.FileHash = string(scan.Fingerprint(data))

	// Received -> Parsed. Extraction failure is the only non-terminal exit:
	// the scan stays failed and re-claimable rather than guessing at fields.
	extracted, err := s.ocr.ExtractText(ctx, data, doc.ContentType)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("%w: %v", domain.ErrOCRFailed, err))
	}
	doc.OCRText = extracted.Text

	courseNames, err := s.courseRepo.ListActiveNames(ctx)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("listing course names: %w", err))
	}
	parsed := scan.Parse(extracted.Text, courseNames)
	applyParsedFields(doc, parsed)

	if doc.StudentID == nil {
		if err := s.detectStudent(ctx, doc, parsed); err != nil {
			return err
		}
		if doc.StudentID == nil {
			// Attribution failed; surface for review instead of guessing.
			doc.Status = domain.ScanStatusProcessed
			doc.Disposition = domain.DispositionNeedsReview
			if err := s.finalize(ctx, doc); err != nil {
				return err
			}
			s.notifyReview(ctx, doc, nil)
			return nil
		}
	}

	// Duplicate detection takes priority over match quality: a rescan of an
	// already-processed paper never re-enters the review queue.
	known, err := s.scanRepo.KnownFingerprints(ctx, *doc.StudentID)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("loading fingerprints: %w", err))
	}
	if scan.IsDuplicate(scan.ContentFingerprint(doc.FileHash), known) {
		doc.Status = domain.ScanStatusProcessed
		doc.Disposition = domain.DispositionDuplicate
		return s.finalize(ctx, doc)
	}

	// Candidate-Search.
	candidates, err := s.assignRepo.ListCandidates(ctx, *doc.StudentID, doc.DetectedDate, s.scanCfg.CandidateWindow)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("listing candidates: %w", err))
	}
	ranked := scan.Match(parsed, candidates)
	best, disposition := scan.Decide(ranked)

	doc.Status = domain.ScanStatusProcessed
	doc.Disposition = disposition
	if best != nil {
		applyMatch(doc, parsed, best)
	}

	if err := s.finalize(ctx, doc); err != nil {
		return err
	}

	switch {
	case doc.Disposition == domain.DispositionNeedsReview:
		s.notifyReview(ctx, doc, ranked)
	case doc.Discrepancy == domain.DiscrepancyDiscrepant:
		s.notifyDiscrepancy(ctx, doc, best)
	}
	return nil
}

func (s *reconcileService) AssignManually(ctx context.Context, scanID, assignmentID uuid.UUID, verifiedBy string) (*domain.ScannedDocument, error) {
	doc, err := s.scanRepo.GetByID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if doc.Verified {
		return nil, domain.ErrScanAlreadyVerified
	}
	assignment, err := s.assignRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.scanRepo.Assign(ctx, scanID, assignmentID, verifiedBy); err != nil {
		return nil, fmt.Errorf("reconcile.AssignManually: %w", err)
	}

	log.Printf("reconcile: scan %s manually assigned to %q by %s", scanID, assignment.Name, verifiedBy)
	return s.scanRepo.GetByID(ctx, scanID)
}

func (s *reconcileService) detectStudent(ctx context.Context, doc *domain.ScannedDocument, parsed scan.ParsedFields) error {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("listing students: %w", err))
	}
	profiles := make([]scan.StudentProfile, 0, len(students))
	for i := range students {
		courses, err := s.courseRepo.ListActiveByStudent(ctx, students[i].ID)
		if err != nil {
			return s.fail(ctx, doc, fmt.Errorf("listing courses: %w", err))
		}
		profile := scan.StudentProfile{ID: students[i].ID, Name: students[i].Name}
		for _, c := range courses {
			profile.Courses = append(profile.Courses, c.Name)
		}
		profiles = append(profiles, profile)
	}

	detection := scan.DetectStudent(parsed, profiles)
	doc.DetectionMethod = detection.Method
	doc.DetectionConfidence = &detection.Confidence
	if detection.Confident() {
		doc.StudentID = detection.StudentID
	}
	return nil
}

// finalize persists the terminal result. A uniqueness violation here means
// another scan with the same fingerprint committed first (concurrent batch
// race); the loser is reclassified as a duplicate post hoc.
func (s *reconcileService) finalize(ctx context.Context, doc *domain.ScannedDocument) error {
	err := s.scanRepo.UpdateResult(ctx, doc)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrDuplicateScan) && doc.Disposition != domain.DispositionDuplicate {
		log.Printf("reconcile: scan %s lost fingerprint race, reclassifying as duplicate", doc.ID)
		doc.Disposition = domain.DispositionDuplicate
		doc.AssignmentID = nil
		doc.MatchConfidence = nil
		doc.MatchMethod = ""
		return s.finalize(ctx, doc)
	}
	return fmt.Errorf("reconcile.finalize: %w", err)
}

func (s *reconcileService) fail(ctx context.Context, doc *domain.ScannedDocument, cause error) error {
	doc.Status = domain.ScanStatusFailed
	doc.FailureReason = cause.Error()
	if err := s.scanRepo.UpdateResult(ctx, doc); err != nil {
		log.Printf("reconcile: persisting failure for scan %s: %v", doc.ID, err)
	}
	return cause
}

func (s *reconcileService) notifyReview(ctx context.Context, doc *domain.ScannedDocument, ranked []scan.MatchCandidate) {
	if s.emailCfg.NotifyTo == "" {
		return
	}
	token, err := s.tokens.IssueAssignToken(doc.ID)
	if err != nil {
		log.Printf("reconcile: issuing assign token for scan %s: %v", doc.ID, err)
		return
	}

	n := &port.ReviewNotification{
		Doc:         doc,
		StudentName: s.studentName(ctx, doc.StudentID),
		AssignURL:   fmt.Sprintf("%s/assign?token=%s", strings.TrimRight(s.emailCfg.BaseURL, "/"), token),
	}
	for i := range ranked {
		if i == 5 {
			break
		}
		n.Suggestions = append(n.Suggestions, port.SuggestedAssignment{
			Name:       ranked[i].Assignment.Name,
			CourseName: ranked[i].Assignment.CourseName,
			Confidence: ranked[i].Confidence,
		})
	}
	if err := s.email.SendReviewNotification(ctx, s.emailCfg.NotifyTo, n); err != nil {
		log.Printf("reconcile: review notification for scan %s: %v", doc.ID, err)
	}
}

func (s *reconcileService) notifyDiscrepancy(ctx context.Context, doc *domain.ScannedDocument, best *scan.MatchCandidate) {
	if s.emailCfg.NotifyTo == "" || best == nil {
		return
	}
	alert := &port.DiscrepancyAlert{
		Doc:            doc,
		StudentName:    s.studentName(ctx, doc.StudentID),
		AssignmentName: best.Assignment.Name,
	}
	if err := s.email.SendDiscrepancyAlert(ctx, s.emailCfg.NotifyTo, alert); err != nil {
		log.Printf("reconcile: discrepancy alert for scan %s: %v", doc.ID, err)
	}
}

func (s *reconcileService) studentName(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return "unknown student"
	}
	student, err := s.studentRepo.GetByID(ctx, *id)
	if err != nil {
		return "unknown student"
	}
	return student.Name
}

func applyParsedFields(doc *domain.ScannedDocument, parsed scan.ParsedFields) {
	if parsed.Title != nil {
		doc.DetectedTitle = *parsed.Title
	}
	doc.DetectedDate = parsed.Date
	doc.DetectedScore = parsed.Score
	doc.DetectedMaxScore = parsed.MaxScore
	if parsed.LetterGrade != nil {
		doc.DetectedGrade = *parsed.LetterGrade
	}
}

func applyMatch(doc *domain.ScannedDocument, parsed scan.ParsedFields, best *scan.MatchCandidate) {
	doc.AssignmentID = &best.Assignment.ID
	confidence := best.Confidence
	doc.MatchConfidence = &confidence
	doc.MatchMethod = matchMethod(best)
	doc.CanvasScore = best.Assignment.Score

	// Attached for the caregiver's attention; never changes the disposition.
	doc.Discrepancy = scan.EvaluateDiscrepancy(
		parsed.Score, parsed.MaxScore,
		best.Assignment.Score, best.Assignment.PointsPossible,
	)
	doc.ScoreDelta = scan.ScoreDelta(
		parsed.Score, parsed.MaxScore,
		best.Assignment.Score, best.Assignment.PointsPossible,
	)
}

func matchMethod(c *scan.MatchCandidate) string {
	switch {
	case c.TitleScore > 0 && c.DateScore > 0:
		return "title+date"
	case c.TitleScore > 0:
		return "title"
	case c.DateScore > 0:
		return "date"
	default:
		return "course"
	}
}
