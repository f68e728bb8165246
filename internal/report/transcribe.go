package report

import (
	"strconv"

	"tradearea-platform/internal/models"
	"tradearea-platform/internal/stats"
)

// Transcribe renders one statistical table verbatim: a header row naming
// every classification dimension plus value and unit columns, then one row
// per observation in source order. Codes resolve to their declared labels,
// falling back to the raw code when undeclared. Numeric values render as
// numbers; non-numeric values keep the original string untouched.
func Transcribe(table *models.StatisticalTable) Sheet {
	sheet := Sheet{Name: table.Title}
	res := stats.Resolve(table)

	header := make([]Cell, 0, len(table.Classifications)+2)
	for _, dim := range table.Classifications {
		header = append(header, Str(dim.Name))
	}
	header = append(header, Str("値"), Str("単位"))
	sheet.AddStyledRow(RowStyle{Bold: true}, header...)

	for i := range table.Observations {
		obs := &table.Observations[i]

		cells := make([]Cell, 0, len(table.Classifications)+2)
		for _, dim := range table.Classifications {
			code := obs.Tags[dim.ID]
			cells = append(cells, Str(res.Label(dim.ID, code)))
		}

		if v, err := strconv.ParseFloat(obs.Value, 64); err == nil {
			cells = append(cells, Count(v))
		} else {
			cells = append(cells, Str(obs.Value))
		}
		cells = append(cells, Str(obs.Unit))

		sheet.Rows = append(sheet.Rows, Row{Cells: cells})
	}

	widths := make([]float64, 0, len(table.Classifications)+2)
	for range table.Classifications {
		widths = append(widths, 22)
	}
	widths = append(widths, 14, 8)
	sheet.ColumnWidths = widths

	return sheet
}
