package report

import (
	"context"
	"io"
	"strings"
	"testing"

	"tradearea-platform/internal/models"
	"tradearea-platform/pkg/logging"
)

func testBuilder() *Builder {
	logger := logging.NewStructuredLogger("report-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return NewBuilder(logger)
}

func testDim(id, name string, codes ...models.CodeLabel) models.Dimension {
	return models.Dimension{ID: id, Name: name, Codes: codes}
}

func testObs(value string, tags map[string]string) models.Observation {
	return models.Observation{Value: value, Unit: "人", Tags: tags}
}

var areaCodes = []models.CodeLabel{
	{Code: "R001", Label: "1次エリア", Radius: "500"},
	{Code: "R002", Label: "2次エリア", Radius: "1000"},
	{Code: "R003", Label: "3次エリア", Radius: "2000"},
	{Code: "R010", Label: "市区町村"},
	{Code: "R100", Label: "都道府県"},
}

func testDataset() *models.StatisticalDataset {
	return &models.StatisticalDataset{
		Status: models.ResultStatus{Code: 0, Message: "正常に終了しました", Date: "2025-06-01"},
		Parameter: models.QueryParameter{
			RangeType: models.RangeTypeCircle,
			Latitude:  "35.68",
			Longitude: "139.76",
			Radii:     []string{"500", "1000", "2000"},
		},
		Position: models.Position{Prefecture: "東京都", City: "千代田区", Block: "丸の内"},
		Tables: []models.StatisticalTable{
			{
				Title: "男女別人口",
				Classifications: []models.Dimension{
					testDim("area", "集計範囲", areaCodes...),
					testDim("cat01", "男女別", models.CodeLabel{Code: "1200", Label: "男女計"},
						models.CodeLabel{Code: "1201", Label: "男"},
						models.CodeLabel{Code: "1202", Label: "女"}),
				},
				Observations: []models.Observation{
					testObs("1000", map[string]string{"area": "R001", "cat01": "1200"}),
					testObs("520", map[string]string{"area": "R001", "cat01": "1201"}),
					testObs("480", map[string]string{"area": "R001", "cat01": "1202"}),
					testObs("4000", map[string]string{"area": "R002", "cat01": "1200"}),
				},
			},
			{
				Title: "年齢別人口（男女別、5歳階級）",
				Classifications: []models.Dimension{
					testDim("area", "集計範囲", areaCodes...),
					testDim("cat01", "男女別", models.CodeLabel{Code: "3200", Label: "男女計"},
						models.CodeLabel{Code: "3201", Label: "男"},
						models.CodeLabel{Code: "3202", Label: "女"}),
					testDim("cat02", "年齢5歳階級", models.CodeLabel{Code: "3301", Label: "4歳以下"}),
				},
				Observations: []models.Observation{
					testObs("90", map[string]string{"area": "R001", "cat01": "3200", "cat02": "3301"}),
					testObs("50", map[string]string{"area": "R001", "cat01": "3201", "cat02": "3301"}),
				},
			},
			{
				Title: "世帯人員別世帯数",
				Classifications: []models.Dimension{
					testDim("area", "集計範囲", areaCodes...),
					testDim("cat01", "世帯人員別", models.CodeLabel{Code: "1500", Label: "一般世帯"},
						models.CodeLabel{Code: "1501", Label: "単身世帯"}),
				},
				Observations: []models.Observation{
					testObs("400", map[string]string{"area": "R001", "cat01": "1500"}),
				},
			},
			{
				Title: "産業別データ",
				Classifications: []models.Dimension{
					testDim("area", "集計範囲", areaCodes...),
					testDim("cat03", "産業大分類", models.CodeLabel{Code: "4201", Label: "第１次産業"},
						models.CodeLabel{Code: "4203", Label: "第３次産業"}),
					testDim("cat04", "項目", models.CodeLabel{Code: "1", Label: "事業所数"},
						models.CodeLabel{Code: "2", Label: "従業者数"}),
				},
				Observations: []models.Observation{
					testObs("25", map[string]string{"area": "R001", "cat03": "4201", "cat04": "1"}),
					testObs("300", map[string]string{"area": "R001", "cat03": "4201", "cat04": "2"}),
				},
			},
		},
	}
}

func findRowByFirstCell(sheet Sheet, label string) (Row, bool) {
	for _, row := range sheet.Rows {
		if len(row.Cells) > 0 && row.Cells[0].String == label {
			return row, true
		}
	}
	return Row{}, false
}

func TestBuildComparisonRowWidth(t *testing.T) {
	dataset := testDataset()
	params := models.RangeParams{RangeType: models.RangeTypeCircle}
	areas, note := BuildAreaConfigs(params, dataset.Position)

	sheet := testBuilder().BuildComparison(context.Background(), dataset, areas, note, "")

	wantCells := 2 + len(areas)
	for i, row := range sheet.Rows {
		if len(row.Cells) <= 2 {
			continue // titles, notes, spacers
		}
		if len(row.Cells) != wantCells {
			t.Errorf("row %d has %d cells, want %d", i, len(row.Cells), wantCells)
		}
	}

	if len(sheet.ColumnWidths) != wantCells {
		t.Errorf("got %d column widths, want %d", len(sheet.ColumnWidths), wantCells)
	}
}

func TestBuildComparisonValues(t *testing.T) {
	dataset := testDataset()
	params := models.RangeParams{RangeType: models.RangeTypeCircle}
	areas, note := BuildAreaConfigs(params, dataset.Position)

	sheet := testBuilder().BuildComparison(context.Background(), dataset, areas, note, "")

	row, ok := findRowByFirstCell(sheet, "男女計")
	if !ok {
		t.Fatal("男女計 row missing")
	}
	// Columns: label, spacer, then one cell per area in order.
	if row.Cells[2].Number != 1000 {
		t.Errorf("tier-1 男女計 = %v, want 1000", row.Cells[2].Number)
	}
	if row.Cells[3].Number != 4000 {
		t.Errorf("tier-2 男女計 = %v, want 4000", row.Cells[3].Number)
	}
	// Sparse cross-tabulation: absent cells render as zero, never omitted.
	if row.Cells[4].Kind != CellNumber || row.Cells[4].Number != 0 {
		t.Errorf("tier-3 男女計 = %+v, want zero number cell", row.Cells[4])
	}

	row, ok = findRowByFirstCell(sheet, "一般世帯")
	if !ok {
		t.Fatal("一般世帯 row missing")
	}
	if row.Cells[2].Number != 400 {
		t.Errorf("tier-1 一般世帯 = %v, want 400", row.Cells[2].Number)
	}

	row, ok = findRowByFirstCell(sheet, "第１次産業")
	if !ok {
		t.Fatal("第１次産業 row missing")
	}
	if row.Cells[2].Number != 25 {
		t.Errorf("tier-1 establishments = %v, want 25", row.Cells[2].Number)
	}
}

func TestBuildComparisonAreaHeaders(t *testing.T) {
	dataset := testDataset()
	params := models.RangeParams{RangeType: models.RangeTypeCircle}
	areas, note := BuildAreaConfigs(params, dataset.Position)

	sheet := testBuilder().BuildComparison(context.Background(), dataset, areas, note, "")

	header, ok := findRowByFirstCell(sheet, "区分")
	if !ok {
		t.Fatal("column header row missing")
	}
	wantAreas := []string{"1次エリア(0.5km)", "2次エリア(1km)", "3次エリア(2km)", "千代田区", "東京都"}
	for i, want := range wantAreas {
		if got := header.Cells[i+2].String; got != want {
			t.Errorf("area header %d = %q, want %q", i, got, want)
		}
	}
}

func TestBuildComparisonZeroFillsWhenTablesMissing(t *testing.T) {
	params := models.RangeParams{RangeType: models.RangeTypeCircle}
	areas, note := BuildAreaConfigs(params, models.Position{})

	sheet := testBuilder().BuildComparison(context.Background(), nil, areas, note, "")

	row, ok := findRowByFirstCell(sheet, "4歳以下")
	if !ok {
		t.Fatal("age bracket row missing from zero-filled sheet")
	}
	for i, cell := range row.Cells[2:] {
		if cell.Kind != CellNumber || cell.Number != 0 {
			t.Errorf("cell %d = %+v, want zero number", i, cell)
		}
	}
}

func TestBuildReportRichVsBasic(t *testing.T) {
	builder := testBuilder()
	basic := models.BasicInfo{Address: "東京都千代田区丸の内1-1", Latitude: 35.68, Longitude: 139.76}

	rich := builder.BuildReport(context.Background(), basic, &models.AnalysisRun{
		RangeParams: models.RangeParams{RangeType: models.RangeTypeCircle},
		Dataset:     testDataset(),
		Competitors: []models.Competitor{{Name: "店舗A", DistanceM: 120, Tier: 1}},
	}, "")

	// Summary, basic info, comparison, competitors, one detail per table.
	if want := 4 + len(testDataset().Tables); len(rich) != want {
		t.Fatalf("rich report has %d sheets, want %d", len(rich), want)
	}
	for _, sheet := range rich {
		if sheet.Name == "" {
			t.Error("sheet with empty name")
		}
	}

	fallback := builder.BuildReport(context.Background(), basic, &models.AnalysisRun{
		RangeParams: models.RangeParams{RangeType: models.RangeTypeCircle},
		Population:  models.NewPopulationSummary(),
	}, "")
	if len(fallback) != 1 {
		t.Fatalf("basic report has %d sheets, want 1", len(fallback))
	}
	if fallback[0].Name != "基本レポート" {
		t.Errorf("basic sheet name = %q", fallback[0].Name)
	}
}

func TestBuildDualReportPrefixes(t *testing.T) {
	builder := testBuilder()
	basic := models.BasicInfo{Address: "東京都千代田区丸の内1-1"}
	circle := &models.AnalysisRun{
		RangeParams: models.RangeParams{RangeType: models.RangeTypeCircle},
		Dataset:     testDataset(),
	}
	driveTime := &models.AnalysisRun{
		RangeParams: models.RangeParams{RangeType: models.RangeTypeDriveTime},
		Population:  models.NewPopulationSummary(),
	}

	sheets := builder.BuildDualReport(context.Background(), basic, circle, driveTime)

	if sheets[0].Name != "サマリー" {
		t.Fatalf("first sheet = %q, want cross-mode summary", sheets[0].Name)
	}
	var circleCount, driveCount int
	for _, sheet := range sheets[1:] {
		switch {
		case strings.HasPrefix(sheet.Name, PrefixCircle):
			circleCount++
		case strings.HasPrefix(sheet.Name, PrefixDriveTime):
			driveCount++
		default:
			t.Errorf("sheet %q carries no mode prefix", sheet.Name)
		}
	}
	if circleCount == 0 || driveCount == 0 {
		t.Errorf("expected sheets for both modes, got circle=%d driveTime=%d", circleCount, driveCount)
	}
}

func TestDetailSheetName(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		title  string
		prefix string
		want   string
	}{
		{"short title", 0, "男女別人口", "", "T01_男女別人口"},
		{"forbidden chars stripped", 1, "人口[総数]/世帯*数?", "", "T02_人口総数世帯数"},
		{"long title truncated", 2, strings.Repeat("あ", 30), "", "T03_" + strings.Repeat("あ", 20)},
		{"prefixed", 0, "産業別", PrefixCircle, "円形_T01_産業別"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detailSheetName(tt.index, tt.title, tt.prefix); got != tt.want {
				t.Errorf("detailSheetName() = %q, want %q", got, tt.want)
			}
		})
	}
}
