// Package screening reads and writes the spreadsheets used in a
// literature screening workflow: input sheets listing candidate PDFs and
// output sheets reporting extracted abstracts.
package screening

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/openpaper/abstractor/store"
)

// sheetName is the tab holding extraction results in report files.
const sheetName = "Extractions"

// reportHeader is the first row of a report sheet. Columns A through H.
var reportHeader = []string{
	"Path", "Filename", "Method", "Found", "Words", "Abstract", "Error", "Updated",
}

var columns = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// WriteSheet writes extraction results to an XLSX report at path. An empty
// result set produces a header-only sheet.
func WriteSheet(path string, exs []store.Extraction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for c, h := range reportHeader {
		cell := fmt.Sprintf("%s1", columns[c])
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for r, ex := range exs {
		row := r + 2
		values := []interface{}{
			ex.Path, ex.Filename, ex.Method, ex.Found,
			ex.WordCount, ex.Abstract, ex.Error, ex.UpdatedAt,
		}
		for c, v := range values {
			cell := fmt.Sprintf("%s%d", columns[c], row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving XLSX: %w", err)
	}
	return nil
}

// ReadPaths collects PDF paths from the first column of every sheet in an
// XLSX file. Header rows and cells that are not .pdf paths are skipped, so
// a screening sheet can carry titles, notes, and decisions in the other
// columns.
func ReadPaths(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	var paths []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			cell := strings.TrimSpace(row[0])
			if strings.EqualFold(filepath.Ext(cell), ".pdf") {
				paths = append(paths, cell)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF paths found in %s", path)
	}
	return paths, nil
}
