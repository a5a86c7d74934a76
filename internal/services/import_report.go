package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReportEntry is one failure collected during an import run
type ReportEntry struct {
	Kind   string
	Record string
	Reason string
	Line   string
}

// ImportReport accumulates failures of one run in the order they happened
type ImportReport struct {
	entries []ReportEntry
}

// Add appends a failure
func (r *ImportReport) Add(entry ReportEntry) {
	r.entries = append(r.entries, entry)
}

// Len returns the number of failures
func (r *ImportReport) Len() int {
	return len(r.entries)
}

// Lines returns the human readable error lines
func (r *ImportReport) Lines() []string {
	lines := make([]string, len(r.entries))
	for i, e := range r.entries {
		lines[i] = e.Line
	}
	return lines
}

// Text joins the error lines with newlines
func (r *ImportReport) Text() string {
	return strings.Join(r.Lines(), "\n")
}

const reportSheet = "Errors"

// WriteXLSX saves the report as a workbook with one row per failure
func (r *ImportReport) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", reportSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C00000"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := []string{"Kind", "Record", "Reason"}
	widths := []float64{20, 80, 80}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(reportSheet, cell, h)
		f.SetCellStyle(reportSheet, cell, cell, headerStyle)

		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(reportSheet, col, col, widths[i])
	}

	for i, e := range r.entries {
		row := i + 2
		f.SetCellValue(reportSheet, fmt.Sprintf("A%d", row), e.Kind)
		f.SetCellValue(reportSheet, fmt.Sprintf("B%d", row), e.Record)
		f.SetCellValue(reportSheet, fmt.Sprintf("C%d", row), e.Reason)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
