package reportexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// scanColumns defines the scan history CSV header row.
var scanColumns = []string{
	"File Name",
	"Student",
	"Scan Date",
	"Source",
	"Status",
	"Disposition",
	"Detected Title",
	"Detected Date",
	"Detected Score",
	"Detected Max",
	"Letter Grade",
	"Assignment",
	"Canvas Score",
	"Score Delta",
	"Discrepancy",
	"Match Confidence",
	"Match Method",
	"Verified",
	"Created At",
}

// Writer wraps csv.Writer for exporting reconciliation outcomes as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the scan history header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(scanColumns)
}

// WriteScans converts a batch of scans to CSV rows and writes them.
func (w *Writer) WriteScans(docs []domain.ScannedDocument) error {
	for i := range docs {
		row := scanToRow(&docs[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// scanToRow converts a single scan to a string slice matching scanColumns.
// Match columns stay empty for unmatched and duplicate scans.
func scanToRow(doc *domain.ScannedDocument) []string {
	row := make([]string, len(scanColumns))

	row[0] = doc.FileName
	row[1] = doc.StudentName
	row[2] = doc.ScanDate.Format(time.RFC3339)
	row[3] = string(doc.Source)
	row[4] = string(doc.Status)
	row[5] = string(doc.Disposition)
	row[6] = doc.DetectedTitle
	row[7] = formatDate(doc.DetectedDate)
	row[8] = formatFloat(doc.DetectedScore)
	row[9] = formatFloat(doc.DetectedMaxScore)
	row[10] = doc.DetectedGrade
	row[17] = formatBool(doc.Verified)
	row[18] = doc.CreatedAt.Format(time.RFC3339)

	if doc.AssignmentID == nil {
		return row
	}

	row[11] = doc.AssignmentName
	row[12] = formatFloat(doc.CanvasScore)
	row[13] = formatFloat(doc.ScoreDelta)
	row[14] = string(doc.Discrepancy)
	row[15] = formatFloat(doc.MatchConfidence)
	row[16] = doc.MatchMethod

	return row
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a student name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_student_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(studentName, ext string) string {
	sanitized := SanitizeFilename(studentName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
