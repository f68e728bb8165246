package export

import (
	"bytes"
	"testing"

	"tradearea-platform/internal/report"
)

func TestRenderWorkbook(t *testing.T) {
	sheets := []report.Sheet{
		{
			Name: "サマリー",
			Rows: []report.Row{
				{Cells: []report.Cell{report.Str("総人口"), report.Num(12345)}},
				{Cells: []report.Cell{report.Link("Google Maps", "https://maps.example.com/x")}},
			},
			ColumnWidths: []float64{20, 15},
		},
		{
			Name: "競合施設",
			Rows: []report.Row{
				{
					Cells: []report.Cell{report.Str("順位"), report.Str("施設名")},
					Style: report.RowStyle{Bold: true, FillColor: "FF4472C4", FontColor: "FFFFFFFF"},
				},
			},
		},
	}

	f, err := RenderWorkbook(sheets)
	if err != nil {
		t.Fatalf("RenderWorkbook() error = %v", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) != 2 || names[0] != "サマリー" || names[1] != "競合施設" {
		t.Fatalf("sheet list = %v", names)
	}

	got, err := f.GetCellValue("サマリー", "A1")
	if err != nil || got != "総人口" {
		t.Errorf("A1 = %q (err %v), want 総人口", got, err)
	}
	got, err = f.GetCellValue("サマリー", "B1")
	if err != nil || got != "12345" {
		t.Errorf("B1 = %q (err %v), want 12345", got, err)
	}

	hasLink, target, err := f.GetCellHyperLink("サマリー", "A2")
	if err != nil || !hasLink || target != "https://maps.example.com/x" {
		t.Errorf("A2 hyperlink = %v %q (err %v)", hasLink, target, err)
	}

	got, err = f.GetCellValue("競合施設", "B1")
	if err != nil || got != "施設名" {
		t.Errorf("競合施設 B1 = %q (err %v)", got, err)
	}
}

func TestRenderWorkbookNoSheets(t *testing.T) {
	if _, err := RenderWorkbook(nil); err == nil {
		t.Fatal("expected error for empty sheet list")
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	sheets := []report.Sheet{{Name: "基本情報", Rows: []report.Row{
		{Cells: []report.Cell{report.Str("項目"), report.Str("値")}},
	}}}

	if err := WriteWorkbook(&buf, sheets); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}
	// xlsx files are zip archives.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("output does not look like an xlsx archive")
	}
}
