package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tealeg/xlsx/v2"
)

// sheetName is the single worksheet written to every workbook.
const sheetName = "Founders"

// maxColumnWidth caps autofit so one long URL does not produce an unreadable
// spreadsheet.
const maxColumnWidth = 60

// XLSX renders the snapshot to an Excel workbook.
type XLSX struct {
	path string
}

// NewXLSX creates the sink, making the parent directory if needed.
func NewXLSX(path string) (*XLSX, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create xlsx sink directory: %w", err)
	}
	return &XLSX{path: path}, nil
}

// Name identifies the sink in status reports.
func (s *XLSX) Name() string { return "xlsx" }

// Publish rebuilds the workbook from scratch on every snapshot and swaps it
// into place.
func (s *XLSX) Publish(_ context.Context, header []string, rows [][]string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}

	widths := make([]int, len(header))
	headerRow := sheet.AddRow()
	for i, col := range header {
		headerRow.AddCell().SetString(col)
		widths[i] = len(col)
	}
	for _, row := range rows {
		sheetRow := sheet.AddRow()
		for i, cell := range row {
			sheetRow.AddCell().SetString(cell)
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for i, w := range widths {
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		sheet.SetColWidth(i, i, float64(w)+2)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".workbook-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	if err := file.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}
