// Package export writes report tables as xlsx workbooks.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoSheets is returned when a workbook would be empty.
var ErrNoSheets = errors.New("workbook needs at least one sheet")

// Sheet is one worksheet: a bold header row followed by data rows.
// Cell values may be strings, numbers or bools.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
	Widths []float64 // optional column widths, by position
}

// Write renders sheets into a workbook and streams it to w.
// PRE: at least one sheet; sheet names unique and at most 31 characters
// POST: the first sheet is active
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E8EEF4"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			// A new file starts with "Sheet1".
			if err := f.SetSheetName(f.GetSheetName(0), sh.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh, header); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sh Sheet, headerStyle int) error {
	if len(sh.Header) > 0 {
		if err := f.SetSheetRow(sh.Name, "A1", &sh.Header); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(sh.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sh.Name, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	for i, row := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
			return err
		}
	}
	for i, width := range sh.Widths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.Name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// Read returns every sheet's rows keyed by sheet name.
// The CLI and tests use it to inspect exported workbooks.
func Read(r io.Reader) (map[string][][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	out := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		out[name] = rows
	}
	return out, nil
}
