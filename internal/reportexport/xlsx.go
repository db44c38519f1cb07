package reportexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

const (
	scanSheet  = "Scans"
	trendSheet = "Grade Trends"
)

// trendColumns defines the grade trend sheet header row.
var trendColumns = []string{
	"Course",
	"Snapshot Date",
	"Current Score",
	"Letter Grade",
	"Assignments Total",
	"Assignments Graded",
	"Assignments Missing",
}

// WriteWorkbook writes an Excel workbook with a scan history sheet and a
// grade trend sheet to w.
func WriteWorkbook(w io.Writer, docs []domain.ScannedDocument, snapshots []domain.GradeSnapshot) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", scanSheet); err != nil {
		return fmt.Errorf("renaming scan sheet: %w", err)
	}
	if _, err := f.NewSheet(trendSheet); err != nil {
		return fmt.Errorf("creating trend sheet: %w", err)
	}

	if err := writeScanSheet(f, docs); err != nil {
		return err
	}
	if err := writeTrendSheet(f, snapshots); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeScanSheet(f *excelize.File, docs []domain.ScannedDocument) error {
	header := make([]interface{}, len(scanColumns))
	for i, c := range scanColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(scanSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing scan header: %w", err)
	}

	for i := range docs {
		row := scanToRow(&docs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing scan row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(scanSheet, cell, &cells); err != nil {
			return fmt.Errorf("writing scan row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeTrendSheet(f *excelize.File, snapshots []domain.GradeSnapshot) error {
	header := make([]interface{}, len(trendColumns))
	for i, c := range trendColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(trendSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing trend header: %w", err)
	}

	for i := range snapshots {
		s := &snapshots[i]
		cells := []interface{}{
			s.CourseName,
			s.SnapshotDate.Format("2006-01-02"),
			formatFloat(s.CurrentScore),
			s.LetterGrade,
			s.AssignmentsTotal,
			s.AssignmentsGraded,
			s.AssignmentsMissing,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing trend row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(trendSheet, cell, &cells); err != nil {
			return fmt.Errorf("writing trend row %d: %w", i+2, err)
		}
	}
	return nil
}
