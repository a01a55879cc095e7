// Package sheet projects extracted field records onto a fixed four-column grid.
package sheet

import (
	"strings"

	"github.com/mvp-joe/project-fieldsheet/internal/parsers"
	"github.com/rivo/uniseg"
)

const (
	// MaxNameLength is the longest sheet name a workbook accepts.
	MaxNameLength = 31

	// truncatedNameLength is how many characters survive truncation before the marker.
	truncatedNameLength = 28

	// Ellipsis marks a truncated sheet name.
	Ellipsis = "..."

	// MinColumnWidth and MaxColumnWidth bound best-fit column widths, in characters.
	MinColumnWidth = 8.0
	MaxColumnWidth = 80.0

	columnPadding = 2.0
)

// Column positions in every sheet.
const (
	ColumnName = iota
	ColumnType
	ColumnDefault
	ColumnComment
	ColumnCount
)

// Header holds the four column labels: field name, type, default value, comment.
type Header [ColumnCount]string

// DefaultHeader is the built-in header row.
var DefaultHeader = Header{"字段名", "类型", "默认值", "注释"}

// Sheet is the tabular form of one source file's fields.
type Sheet struct {
	Name   string
	Header Header
	Rows   []parsers.FieldRecord
}

// Name derives a sheet name from a file base name. Names longer than
// MaxNameLength characters keep their first 28 characters plus Ellipsis.
func Name(baseName string) string {
	runes := []rune(baseName)
	if len(runes) <= MaxNameLength {
		return baseName
	}
	return string(runes[:truncatedNameLength]) + Ellipsis
}

// Build creates a sheet from records in the order given.
func Build(name string, header Header, records []parsers.FieldRecord) *Sheet {
	rows := make([]parsers.FieldRecord, len(records))
	copy(rows, records)
	return &Sheet{
		Name:   name,
		Header: header,
		Rows:   rows,
	}
}

// Cells returns the header row followed by one row per record. Absent
// defaults and comments render as blank cells.
func (s *Sheet) Cells() [][]string {
	cells := make([][]string, 0, len(s.Rows)+1)
	cells = append(cells, s.Header[:])
	for _, r := range s.Rows {
		cells = append(cells, []string{r.Name, r.Type, r.DefaultText(), r.CommentText()})
	}
	return cells
}

// ColumnWidths returns best-fit widths for each column based on the display
// width of the widest line in that column. Wide (CJK) characters count double.
func (s *Sheet) ColumnWidths() [ColumnCount]float64 {
	var widths [ColumnCount]float64
	for _, row := range s.Cells() {
		for col, value := range row {
			if w := float64(displayWidth(value)) + columnPadding; w > widths[col] {
				widths[col] = w
			}
		}
	}
	for col := range widths {
		widths[col] = clamp(widths[col], MinColumnWidth, MaxColumnWidth)
	}
	return widths
}

func displayWidth(value string) int {
	widest := 0
	for _, line := range strings.Split(value, "\n") {
		if w := uniseg.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
