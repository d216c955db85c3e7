package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidWorkbook is returned when the input is not a readable xlsx workbook.
var ErrInvalidWorkbook = errors.New("invalid workbook")

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Workbook is a parsed workbook.
type Workbook struct {
	Sheets []Sheet
}

// Sheet is one worksheet with its non-empty rows in order.
type Sheet struct {
	Name string
	Rows []Row
}

// Row is a worksheet row. Index is the 1-based row number in the sheet.
type Row struct {
	Index int
	Cells []string
}

// Cell returns the text of the 1-based column i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 1 || i > len(r.Cells) {
		return ""
	}
	return r.Cells[i-1]
}

// SheetData describes a sheet to build: a header row followed by data rows.
// An empty string leaves the cell blank.
type SheetData struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Parse reads an xlsx workbook. Rows without any non-blank cell are skipped.
func Parse(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		sheet := Sheet{Name: name}
		for i, cells := range rows {
			if isBlank(cells) {
				continue
			}
			sheet.Rows = append(sheet.Rows, Row{Index: i + 1, Cells: cells})
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Build writes the sheets into a new xlsx workbook and returns its bytes.
func Build(sheets []SheetData) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]struct{}, len(sheets))
	for i, sd := range sheets {
		name := uniqueSheetName(SanitizeSheetName(sd.Name), used)

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeRow(f, name, 1, sd.Header); err != nil {
			return nil, err
		}
		if len(sd.Header) > 0 {
			first, _ := excelize.CoordinatesToCellName(1, 1)
			last, _ := excelize.CoordinatesToCellName(len(sd.Header), 1)
			if err := f.SetCellStyle(name, first, last, headerStyle); err != nil {
				return nil, fmt.Errorf("failed to style header of %q: %w", name, err)
			}
			lastCol, _ := excelize.ColumnNumberToName(len(sd.Header))
			_ = f.SetColWidth(name, "A", lastCol, 20)
		}

		for j, row := range sd.Rows {
			if err := writeRow(f, name, j+2, row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for col, v := range values {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("invalid cell %d:%d: %w", col+1, rowNum, err)
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// SanitizeSheetName makes name acceptable to Excel: no []:*?/\ characters,
// no surrounding apostrophes, at most 31 runes, never empty.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")

	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	if name == "" {
		name = "Sheet"
	}
	return name
}

func uniqueSheetName(name string, used map[string]struct{}) string {
	candidate := name
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return candidate
		}
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len([]rune(suffix)) > maxSheetName {
			base = base[:maxSheetName-len([]rune(suffix))]
		}
		candidate = string(base) + suffix
	}
}
