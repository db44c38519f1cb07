package reportexport_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/reportexport"
)

func floatPtr(f float64) *float64 { return &f }

func sampleScan(matched bool) domain.ScannedDocument {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	doc := domain.ScannedDocument{
		ID:               uuid.New(),
		FileName:         "science-test.jpg",
		StudentName:      "Jamie Deans",
		ScanDate:         time.Date(2024, time.January, 16, 9, 30, 0, 0, time.UTC),
		Source:           domain.SourceManualUpload,
		Status:           domain.ScanStatusProcessed,
		Disposition:      domain.DispositionAutoMatched,
		DetectedTitle:    "Science Test",
		DetectedDate:     &date,
		DetectedScore:    floatPtr(42),
		DetectedMaxScore: floatPtr(50),
		DetectedGrade:    "B",
		Verified:         true,
		CreatedAt:        time.Date(2024, time.January, 16, 9, 31, 0, 0, time.UTC),
	}
	if matched {
		assignmentID := uuid.New()
		doc.AssignmentID = &assignmentID
		doc.AssignmentName = "Science Test"
		doc.CanvasScore = floatPtr(45)
		doc.ScoreDelta = floatPtr(-6)
		doc.Discrepancy = domain.DiscrepancyDiscrepant
		doc.MatchConfidence = floatPtr(0.92)
		doc.MatchMethod = "title+date"
	}
	return doc
}

func TestWriter_MatchedScanRow(t *testing.T) {
	var buf bytes.Buffer
	w := reportexport.NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteScans([]domain.ScannedDocument{sampleScan(true)}))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, "File Name", header[0])
	assert.Equal(t, "Created At", header[len(header)-1])

	row := records[1]
	require.Len(t, row, len(header))
	assert.Equal(t, "science-test.jpg", row[0])
	assert.Equal(t, "Jamie Deans", row[1])
	assert.Equal(t, "auto_matched", row[5])
	assert.Equal(t, "Science Test", row[6])
	assert.Equal(t, "2024-01-15", row[7])
	assert.Equal(t, "42.00", row[8])
	assert.Equal(t, "50.00", row[9])
	assert.Equal(t, "Science Test", row[11])
	assert.Equal(t, "45.00", row[12])
	assert.Equal(t, "-6.00", row[13])
	assert.Equal(t, "discrepant", row[14])
	assert.Equal(t, "0.92", row[15])
	assert.Equal(t, "title+date", row[16])
	assert.Equal(t, "Yes", row[17])
}

func TestWriter_UnmatchedScanLeavesMatchColumnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := reportexport.NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteScans([]domain.ScannedDocument{sampleScan(false)}))
	w.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	for col := 11; col <= 16; col++ {
		assert.Empty(t, row[col], "column %d should be empty for unmatched scans", col)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Jamie Deans", "Jamie_Deans"},
		{"special characters", "José O'Brien (Jr.)", "Jos_O_Brien_Jr"},
		{"consecutive separators", "a  --  b", "a_--_b"},
		{"leading and trailing junk", "  !!name!!  ", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportexport.SanitizeFilename(tt.input))
		})
	}

	long := reportexport.SanitizeFilename(string(bytes.Repeat([]byte("x"), 150)))
	assert.Len(t, long, 100)
}

func TestBuildFilename(t *testing.T) {
	got := reportexport.BuildFilename("Jamie Deans", "csv")
	want := "Jamie_Deans_" + time.Now().Format("2006-01-02") + ".csv"
	assert.Equal(t, want, got)
}
