package domain

// FileType represents the allowed scan file types.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWEBP FileType = "webp"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWEBP,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"webp": FileTypeWEBP,
}

// ContentTypeFor maps a FileType back to its MIME content type.
var ContentTypeFor = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeWEBP: "image/webp",
}

// ScanSource identifies where a scanned document came from.
type ScanSource string

const (
	SourceManualUpload ScanSource = "manual_upload"
	SourceEmail        ScanSource = "email"
	SourceDrive        ScanSource = "drive"
	SourceDropbox      ScanSource = "dropbox"
)

// ScanStatus represents the processing lifecycle of a scanned document.
type ScanStatus string

const (
	ScanStatusPending    ScanStatus = "pending"
	ScanStatusProcessing ScanStatus = "processing"
	ScanStatusProcessed  ScanStatus = "processed"
	ScanStatusFailed     ScanStatus = "failed"
)

// Disposition is the terminal classification of one reconciliation pass.
type Disposition string

const (
	DispositionAutoMatched Disposition = "auto_matched"
	DispositionNeedsReview Disposition = "needs_review"
	DispositionUnmatched   Disposition = "unmatched"
	DispositionDuplicate   Disposition = "duplicate"
)

// DiscrepancyStatus classifies the handwritten score against the Canvas score.
type DiscrepancyStatus string

const (
	DiscrepancyNoComparableData DiscrepancyStatus = "no_comparable_data"
	DiscrepancyConsistent       DiscrepancyStatus = "consistent"
	DiscrepancyDiscrepant       DiscrepancyStatus = "discrepant"
	DiscrepancyUnparseable      DiscrepancyStatus = "unparseable"
)

// DetectionMethod records how a scan was attributed to a student.
type DetectionMethod string

const (
	DetectionDeclared       DetectionMethod = "declared"
	DetectionOCRName        DetectionMethod = "ocr_name"
	DetectionPartialName    DetectionMethod = "partial_name"
	DetectionUniqueCourse   DetectionMethod = "course_match"
	DetectionAmbiguous      DetectionMethod = "ambiguous"
	DetectionManualOverride DetectionMethod = "manual"
)
