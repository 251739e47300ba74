package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// DefaultSheet is the worksheet that holds report records.
const DefaultSheet = "Reports"

// ExcelWriter persists report records to an xlsx workbook. The workbook
// accumulates across runs: records whose URL is already present in the
// sheet are skipped, so re-running a harvest only appends what is new.
type ExcelWriter struct {
	// path is the workbook file.
	path string

	// sheet is the worksheet written to.
	sheet string
}

// NewExcelWriter creates a writer for the workbook at path.
func NewExcelWriter(path string) *ExcelWriter {
	return &ExcelWriter{
		path:  path,
		sheet: DefaultSheet,
	}
}

// Append writes the records to the workbook, creating it with a header
// row when it does not exist yet. It returns the number of rows actually
// appended after URL deduplication.
func (w *ExcelWriter) Append(records []model.ReportRecord) (int, error) {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		return w.create(records)
	} else if err != nil {
		return 0, fmt.Errorf("failed to check workbook path: %w", err)
	}
	return w.update(records)
}

// create builds a fresh workbook with a header row.
func (w *ExcelWriter) create(records []model.ReportRecord) (int, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRow(f, w.sheet, 1, model.ReportColumns); err != nil {
		return 0, err
	}

	appended := 0
	seen := make(map[string]bool)
	for _, rec := range records {
		if seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true

		if err := writeRow(f, w.sheet, appended+2, rec.Row()); err != nil {
			return 0, err
		}
		appended++
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create workbook directory: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return 0, fmt.Errorf("failed to save workbook: %w", err)
	}
	return appended, nil
}

// update appends new records to an existing workbook. The set of known
// URLs is read from the last cell of every data row, matching the layout
// create writes.
func (w *ExcelWriter) update(records []model.ReportRecord) (int, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := w.sheet
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to look up sheet: %w", err)
	}
	if idx < 0 {
		// Fall back to whatever sheet the workbook leads with.
		if sheets := f.GetSheetList(); len(sheets) > 0 {
			sheet = sheets[0]
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read workbook rows: %w", err)
	}

	existing := make(map[string]bool)
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if u := row[len(row)-1]; u != "" {
			existing[u] = true
		}
	}

	appended := 0
	next := len(rows) + 1
	for _, rec := range records {
		if existing[rec.URL] {
			continue
		}
		existing[rec.URL] = true

		if err := writeRow(f, sheet, next, rec.Row()); err != nil {
			return 0, err
		}
		next++
		appended++
	}

	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("failed to save workbook: %w", err)
	}
	return appended, nil
}

// writeRow writes values into one row starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
