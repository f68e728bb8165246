package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"tradearea-platform/internal/report"
)

// RenderWorkbook materializes the builder's sheet sequence into a workbook.
// Sheet order is preserved; the first sheet replaces the default one.
func RenderWorkbook(sheets []report.Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to render")
	}

	f := excelize.NewFile()
	styles := newStyleCache(f)

	for i, sheet := range sheets {
		name := sheet.Name
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
			}
		}

		for col, width := range sheet.ColumnWidths {
			colName, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(name, colName, colName, width); err != nil {
				return nil, err
			}
		}

		for rowIdx, row := range sheet.Rows {
			if err := renderRow(f, styles, name, rowIdx+1, row); err != nil {
				return nil, fmt.Errorf("failed to render %s row %d: %w", name, rowIdx+1, err)
			}
		}
	}

	return f, nil
}

// WriteWorkbook renders the sheets and streams the xlsx bytes to w.
func WriteWorkbook(w io.Writer, sheets []report.Sheet) error {
	f, err := RenderWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func renderRow(f *excelize.File, styles *styleCache, sheetName string, rowNum int, row report.Row) error {
	for colIdx, cell := range row.Cells {
		axis, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
		if err != nil {
			return err
		}

		switch cell.Kind {
		case report.CellEmpty:
			// Nothing to write; the row style still applies below.
		case report.CellString:
			if err := f.SetCellValue(sheetName, axis, cell.String); err != nil {
				return err
			}
		case report.CellNumber:
			if err := f.SetCellValue(sheetName, axis, cell.Number); err != nil {
				return err
			}
		case report.CellLink:
			if err := f.SetCellValue(sheetName, axis, cell.LinkText); err != nil {
				return err
			}
			if err := f.SetCellHyperLink(sheetName, axis, cell.LinkURL, "External"); err != nil {
				return err
			}
		}

		styleID, err := styles.resolve(row.Style, cell)
		if err != nil {
			return err
		}
		if styleID != 0 {
			if err := f.SetCellStyle(sheetName, axis, axis, styleID); err != nil {
				return err
			}
		}
	}
	return nil
}

// styleCache deduplicates workbook styles: one style per distinct
// (row style, number format, link) combination.
type styleCache struct {
	file  *excelize.File
	cache map[string]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{file: f, cache: make(map[string]int)}
}

func (c *styleCache) resolve(rowStyle report.RowStyle, cell report.Cell) (int, error) {
	isLink := cell.Kind == report.CellLink
	key := fmt.Sprintf("%v|%v|%s|%s|%v|%s|%v",
		rowStyle.Bold, rowStyle.FontSize, rowStyle.FontColor, rowStyle.FillColor,
		rowStyle.Centered, cell.NumberFormat, isLink)

	if id, ok := c.cache[key]; ok {
		return id, nil
	}

	style := excelize.Style{}
	styled := false

	font := excelize.Font{}
	if rowStyle.Bold {
		font.Bold = true
		styled = true
	}
	if rowStyle.FontSize > 0 {
		font.Size = rowStyle.FontSize
		styled = true
	}
	if rowStyle.FontColor != "" {
		font.Color = rgbHex(rowStyle.FontColor)
		styled = true
	}
	if isLink {
		font.Color = "0000FF"
		font.Underline = "single"
		styled = true
	}
	if styled {
		style.Font = &font
	}

	if rowStyle.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{rgbHex(rowStyle.FillColor)},
		}
		styled = true
	}

	if rowStyle.Centered {
		style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
		styled = true
	}

	if cell.NumberFormat != "" {
		numFmt := cell.NumberFormat
		style.CustomNumFmt = &numFmt
		styled = true
	}

	if !styled {
		c.cache[key] = 0
		return 0, nil
	}

	id, err := c.file.NewStyle(&style)
	if err != nil {
		return 0, err
	}
	c.cache[key] = id
	return id, nil
}

// rgbHex strips the alpha channel off ARGB color hints.
func rgbHex(argb string) string {
	if len(argb) == 8 && strings.HasPrefix(strings.ToUpper(argb), "FF") {
		return argb[2:]
	}
	return argb
}
