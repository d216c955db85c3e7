package reconcile

import (
	"strings"

	"record-sync/core/workbook"
)

// Extract reads every sheet of wb into records. Row 1 of each sheet is the
// header. Column i of columns is read from cell i+1 by position; header text
// is never matched. Trimmed empty cells are absent and rows with no value at
// all are skipped.
func Extract(wb *workbook.Workbook, columns Columns) []Record {
	if wb == nil {
		return nil
	}

	var records []Record
	for _, sheet := range wb.Sheets {
		for _, row := range sheet.Rows {
			if row.Index <= 1 {
				continue
			}

			values := make(map[string]string, len(columns))
			for i, c := range columns {
				if v := strings.TrimSpace(row.Cell(i + 1)); v != "" {
					values[c.Key] = v
				}
			}
			if len(values) == 0 {
				continue
			}

			records = append(records, NewRecord(values, &Provenance{Sheet: sheet.Name, Row: row.Index}))
		}
	}

	return records
}
