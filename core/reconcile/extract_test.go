package reconcile

import (
	"bytes"
	"testing"

	"record-sync/core/workbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	cols := testEntity().Columns
	wb := &workbook.Workbook{
		Sheets: []workbook.Sheet{
			{
				Name: "Acme",
				Rows: []workbook.Row{
					{Index: 1, Cells: []string{"Rate per km", "ID", "Partner"}},
					{Index: 2, Cells: []string{"1", " Acme ", "0.50"}},
					{Index: 4, Cells: []string{"", "Acme", "   "}},
					{Index: 5, Cells: []string{" ", "  "}},
				},
			},
			{
				Name: "Beta",
				Rows: []workbook.Row{
					{Index: 1, Cells: []string{"ID"}},
					{Index: 2, Cells: []string{"7"}},
				},
			},
		},
	}

	records := Extract(wb, cols)
	require.Len(t, records, 3)

	assert.Equal(t, map[string]string{"id": "1", "partner": "Acme", "km": "0.50"}, records[0].Values())
	assert.Equal(t, &Provenance{Sheet: "Acme", Row: 2}, records[0].Provenance())

	assert.Equal(t, map[string]string{"partner": "Acme"}, records[1].Values())
	assert.Equal(t, &Provenance{Sheet: "Acme", Row: 4}, records[1].Provenance())

	assert.Equal(t, map[string]string{"id": "7"}, records[2].Values())
	assert.Equal(t, &Provenance{Sheet: "Beta", Row: 2}, records[2].Provenance())
}

func TestExtract_Nil(t *testing.T) {
	assert.Nil(t, Extract(nil, testEntity().Columns))
}

func TestExtract_RoundTripsBuiltWorkbook(t *testing.T) {
	cols := testEntity().Columns
	original := []Record{
		rec("id", "1", "partner", "Acme", "km", "0.50"),
		rec("id", "2", "km", "1.25"),
		rec("partner", "Beta", "km", "2"),
	}

	sheet := workbook.SheetData{Name: "Rates", Header: cols.Titles()}
	for _, r := range original {
		sheet.Rows = append(sheet.Rows, exportRow(r, cols))
	}
	data, err := workbook.Build([]workbook.SheetData{sheet})
	require.NoError(t, err)

	wb, err := workbook.Parse(bytes.NewReader(data))
	require.NoError(t, err)

	extracted := Extract(wb, cols)
	require.Len(t, extracted, len(original))
	for i := range original {
		assert.Equal(t, original[i].Values(), extracted[i].Values())
		assert.Equal(t, i+2, extracted[i].Provenance().Row)
	}
}
