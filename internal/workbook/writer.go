// Package workbook assembles sheets into xlsx files with excelize.
package workbook

import (
	"fmt"
	"unicode/utf8"

	"github.com/mvp-joe/project-fieldsheet/internal/sheet"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize.NewFile starts with.
const defaultSheet = "Sheet1"

// Rename records a sheet whose name had to change to be valid and unique.
type Rename struct {
	From string
	To   string
}

// Truncation records a cell value cut to excelize.TotalCellChars characters.
type Truncation struct {
	Sheet  string
	Cell   string
	Length int // original length in characters
}

// Result describes a written workbook.
type Result struct {
	Path      string
	Sheets    []string // final sheet names, in workbook order
	Renamed   []Rename
	Truncated []Truncation
}

// Write saves sheets, in order, into a new workbook at path, overwriting any
// existing file. Returns ErrNoSheets without touching path when sheets is empty.
func Write(path string, sheets []*sheet.Sheet) (*Result, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, newWriteError(path, "", err)
	}

	result := &Result{Path: path}
	names := newNameRegistry()

	for i, s := range sheets {
		name := names.claim(sanitizeName(s.Name))
		if name != s.Name {
			result.Renamed = append(result.Renamed, Rename{From: s.Name, To: name})
		}

		if i == 0 {
			err = f.SetSheetName(defaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return nil, newWriteError(path, name, err)
		}

		truncated, err := writeSheet(f, name, s, headerStyle)
		if err != nil {
			return nil, newWriteError(path, name, err)
		}
		result.Truncated = append(result.Truncated, truncated...)
		result.Sheets = append(result.Sheets, name)
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return nil, newWriteError(path, "", err)
	}

	return result, nil
}

// writeSheet fills one worksheet. Blank values leave the cell unset. Values
// longer than a cell can hold are cut by excelize and reported back.
func writeSheet(f *excelize.File, name string, s *sheet.Sheet, headerStyle int) ([]Truncation, error) {
	var truncated []Truncation
	for rowIdx, row := range s.Cells() {
		for colIdx, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if n := utf8.RuneCountInString(value); n > excelize.TotalCellChars {
				truncated = append(truncated, Truncation{Sheet: name, Cell: cell, Length: n})
			}
			if err := f.SetCellStr(name, cell, value); err != nil {
				return nil, fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	for colIdx, width := range s.ColumnWidths() {
		col, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return nil, err
		}
	}

	return truncated, nil
}
