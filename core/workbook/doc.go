// Package workbook reads and writes xlsx workbooks using excelize.
//
// Parse turns an uploaded workbook into plain text rows per sheet, keeping
// the 1-based row number of every non-empty row so errors can point the
// operator at the exact spreadsheet line. Build writes a workbook with a
// styled header row followed by text cells; values are always written as
// strings so "0.50" stays "0.50" on the next import.
package workbook
