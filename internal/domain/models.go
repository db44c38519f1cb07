package domain

import (
	"time"

	"github.com/google/uuid"
)

// Caregiver is the parent account that owns the tracked students.
type Caregiver struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Student is an observed student synced from Canvas.
type Student struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CanvasID  int64     `db:"canvas_id" json:"canvas_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Course is a student enrollment synced from Canvas.
type Course struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	CanvasID  int64      `db:"canvas_id" json:"canvas_id"`
	StudentID uuid.UUID  `db:"student_id" json:"student_id"`
	Name      string     `db:"name" json:"name"`
	Term      string     `db:"term" json:"term"`
	TermStart *time.Time `db:"term_start" json:"term_start"`
	TermEnd   *time.Time `db:"term_end" json:"term_end"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Assignment is the local cache of a Canvas assignment record. The scanner
// only ever reads these; Canvas remains the source of truth.
type Assignment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CanvasID        int64      `db:"canvas_id" json:"canvas_id"`
	CourseID        uuid.UUID  `db:"course_id" json:"course_id"`
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description"`
	DueAt           *time.Time `db:"due_at" json:"due_at"`
	PointsPossible  *float64   `db:"points_possible" json:"points_possible"`
	SubmissionTypes string     `db:"submission_types" json:"submission_types"`
	IsSubmitted     bool       `db:"is_submitted" json:"is_submitted"`
	Score           *float64   `db:"score" json:"score"`
	Grade           string     `db:"grade" json:"grade"`
	GradedAt        *time.Time `db:"graded_at" json:"graded_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	// CourseName is populated by candidate queries that join courses; it is
	// not a column on the assignments table itself.
	CourseName string `db:"course_name" json:"course_name,omitempty"`
}

// ScannedDocument is the durable record of one reconciliation pass over a
// photographed paper. Created once per input and never re-processed.
type ScannedDocument struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	StudentID    *uuid.UUID `db:"student_id" json:"student_id"`
	AssignmentID *uuid.UUID `db:"assignment_id" json:"assignment_id"`

	FileName    string `db:"file_name" json:"file_name"`
	FileSize    int64  `db:"file_size" json:"file_size"`
	ContentType string `db:"content_type" json:"content_type"`
	FileHash    string `db:"file_hash" json:"file_hash"`

	ScanDate time.Time  `db:"scan_date" json:"scan_date"`
	Source   ScanSource `db:"source" json:"source"`
	Status   ScanStatus `db:"status" json:"status"`

	Disposition         Disposition     `db:"disposition" json:"disposition"`
	DetectionConfidence *float64        `db:"detection_confidence" json:"detection_confidence"`
	DetectionMethod     DetectionMethod `db:"detection_method" json:"detection_method"`

	OCRText string `db:"ocr_text" json:"-"`

	DetectedTitle    string     `db:"detected_title" json:"detected_title"`
	DetectedDate     *time.Time `db:"detected_date" json:"detected_date"`
	DetectedScore    *float64   `db:"detected_score" json:"detected_score"`
	DetectedMaxScore *float64   `db:"detected_max_score" json:"detected_max_score"`
	DetectedGrade    string     `db:"detected_grade" json:"detected_grade"`

	CanvasScore     *float64          `db:"canvas_score" json:"canvas_score"`
	ScoreDelta      *float64          `db:"score_delta" json:"score_delta"`
	Discrepancy     DiscrepancyStatus `db:"discrepancy" json:"discrepancy"`
	MatchConfidence *float64          `db:"match_confidence" json:"match_confidence"`
	MatchMethod     string            `db:"match_method" json:"match_method"`

	Verified   bool       `db:"verified" json:"verified"`
	VerifiedAt *time.Time `db:"verified_at" json:"verified_at"`

	S3Bucket string `db:"s3_bucket" json:"-"`
	S3Key    string `db:"s3_key" json:"-"`

	FailureReason string `db:"failure_reason" json:"failure_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// StudentName and AssignmentName are populated by listing queries that
	// join students and assignments; neither is a scans column.
	StudentName    string `db:"student_name" json:"student_name,omitempty"`
	AssignmentName string `db:"assignment_name" json:"assignment_name,omitempty"`
}

// GradeSnapshot is a point-in-time course grade captured during catalog sync,
// kept for trend reporting.
type GradeSnapshot struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	StudentID          uuid.UUID `db:"student_id" json:"student_id"`
	CourseID           uuid.UUID `db:"course_id" json:"course_id"`
	CurrentScore       *float64  `db:"current_score" json:"current_score"`
	LetterGrade        string    `db:"letter_grade" json:"letter_grade"`
	AssignmentsTotal   int       `db:"assignments_total" json:"assignments_total"`
	AssignmentsGraded  int       `db:"assignments_graded" json:"assignments_graded"`
	AssignmentsMissing int       `db:"assignments_missing" json:"assignments_missing"`
	SnapshotDate       time.Time `db:"snapshot_date" json:"snapshot_date"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`

	// CourseName is populated by queries that join courses; it is not a
	// column on the grade_snapshots table itself.
	CourseName string `db:"course_name" json:"course_name,omitempty"`
}
