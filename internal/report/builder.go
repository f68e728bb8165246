package report

import (
	"context"
	"fmt"
	"strings"

	"tradearea-platform/internal/models"
	"tradearea-platform/internal/stats"
	"tradearea-platform/pkg/logging"
)

// Style colors shared across generated sheets (ARGB).
const (
	fillSectionHeader = "FFE0E0E0"
	fillTableHeader   = "FF4472C4"
	fontWhite         = "FFFFFFFF"
	fontLinkBlue      = "FF0000FF"
)

// Sheet name prefixes for dual-mode reports.
const (
	PrefixCircle    = "円形_"
	PrefixDriveTime = "到達圏_"
)

// Builder assembles the export sheet set for one analysis.
type Builder struct {
	logger *logging.StructuredLogger
}

// NewBuilder creates a new report builder.
func NewBuilder(logger *logging.StructuredLogger) *Builder {
	return &Builder{logger: logger}
}

// BuildReport produces the full sheet sequence for one run: the rich report
// when the raw dataset is available, the basic population-summary report
// otherwise.
func (b *Builder) BuildReport(ctx context.Context, basic models.BasicInfo, run *models.AnalysisRun, prefix string) []Sheet {
	if run == nil {
		return nil
	}
	if run.Dataset != nil && len(run.Dataset.Tables) > 0 {
		return b.buildRichReport(ctx, basic, run, prefix)
	}
	return b.buildBasicReport(ctx, basic, run, prefix)
}

// BuildDualReport produces the "both" mode artifact: one cross-mode summary
// sheet followed by a fully prefixed sheet set per aggregation-type run.
func (b *Builder) BuildDualReport(ctx context.Context, basic models.BasicInfo, circle, driveTime *models.AnalysisRun) []Sheet {
	sheets := []Sheet{b.buildDualSummarySheet(basic, circle, driveTime)}
	sheets = append(sheets, b.BuildReport(ctx, basic, circle, PrefixCircle)...)
	sheets = append(sheets, b.BuildReport(ctx, basic, driveTime, PrefixDriveTime)...)
	return sheets
}

func (b *Builder) buildRichReport(ctx context.Context, basic models.BasicInfo, run *models.AnalysisRun, prefix string) []Sheet {
	dataset := run.Dataset
	areaConfigs, note := BuildAreaConfigs(run.RangeParams, dataset.Position)

	b.logger.Debug(ctx, "[REPORT_BUILD] Building rich report", logging.Fields{
		"range_type":  run.RangeParams.RangeType,
		"table_count": len(dataset.Tables),
		"area_count":  len(areaConfigs),
		"prefix":      prefix,
	})

	sheets := []Sheet{
		b.buildSummarySheet(basic, dataset, prefix),
		b.buildBasicInfoSheet(basic, dataset, prefix),
		b.BuildComparison(ctx, dataset, areaConfigs, note, prefix),
	}

	if len(run.Competitors) > 0 {
		sheets = append(sheets, buildCompetitorsSheet(run.Competitors, prefix))
	}

	for i := range dataset.Tables {
		table := &dataset.Tables[i]
		sheet := b.buildDetailSheet(table, detailSheetName(i, table.Title, prefix))
		sheets = append(sheets, sheet)
	}

	return sheets
}

// BuildComparison emits the main comparison sheet: for each statistical
// section of the fixed catalog, a styled section header, a column-header
// row naming every configured area, and one data row per catalog entry.
// Sections whose source table cannot be located degrade to zero cells; the
// sheet is always emitted in full.
func (b *Builder) BuildComparison(ctx context.Context, dataset *models.StatisticalDataset, areaConfigs []models.AreaConfig, note, prefix string) Sheet {
	sheet := Sheet{Name: prefix + "主要データ"}

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 16}, Str("商圏データ比較（全集計範囲）"))
	sheet.AddBlankRow()
	sheet.AddRow(Str(note))
	sheet.AddBlankRow()

	var tables []models.StatisticalTable
	if dataset != nil {
		tables = dataset.Tables
	}

	b.addSimpleSection(ctx, &sheet, tables, sectionSpec{
		header:     "■ 男女別人口",
		rowLabel:   "区分",
		signatures: sexTotalsSignatures,
		entries:    genderEntries,
	}, areaConfigs)

	ageTable, ageRes, ageOK := findTable(tables, ageBySexSignatures)
	if !ageOK {
		b.logger.Warn(ctx, "[REPORT_SECTION_MISSING] Age-by-sex table not found, zero-filling", logging.Fields{
			"section": "age_brackets",
		})
	}
	for _, block := range sexBlockEntries {
		sheet.AddBlankRow()
		sheet.AddStyledRow(sectionHeaderStyle(), Str("■ 年齢別人口（5歳階級）"+ageBlockTitle(block.Label)))
		sheet.AddRow(columnHeaderCells("年齢層", areaConfigs)...)

		for _, bracket := range ageBracketEntries {
			cells := []Cell{Str(bracket.Label), Empty()}
			for _, area := range areaConfigs {
				var value float64
				if ageOK {
					areaDim, _ := ageRes.DimensionID(stats.RoleArea)
					ageDim, _ := ageRes.DimensionID(stats.RoleAge)
					sexDim, _ := ageRes.DimensionID(stats.RoleSex)
					value = stats.Extract(ageTable, map[string]string{
						areaDim: area.Code,
						sexDim:  resolveEntryCode(ageRes, sexDim, block),
						ageDim:  resolveEntryCode(ageRes, ageDim, bracket),
					})
				}
				cells = append(cells, Count(value))
			}
			sheet.Rows = append(sheet.Rows, Row{Cells: cells})
		}
	}

	sheet.AddBlankRow()
	b.addSimpleSection(ctx, &sheet, tables, sectionSpec{
		header:     "■ 世帯人員別",
		rowLabel:   "区分",
		signatures: householdSignatures,
		entries:    householdEntries,
	}, areaConfigs)

	b.addIndustrySections(ctx, &sheet, tables, areaConfigs)

	widths := []float64{25, 10}
	for range areaConfigs {
		widths = append(widths, 18)
	}
	sheet.ColumnWidths = widths

	return sheet
}

// sectionSpec describes one simple comparison section: one source table,
// one entry dimension, one row per catalog entry.
type sectionSpec struct {
	header     string
	rowLabel   string
	signatures []tableSignature
	entries    []catalogEntry
}

func (b *Builder) addSimpleSection(ctx context.Context, sheet *Sheet, tables []models.StatisticalTable, spec sectionSpec, areaConfigs []models.AreaConfig) {
	sheet.AddStyledRow(sectionHeaderStyle(), Str(spec.header))
	sheet.AddRow(columnHeaderCells(spec.rowLabel, areaConfigs)...)

	table, res, ok := findTable(tables, spec.signatures)
	var areaDim, entryDim string
	if ok {
		areaDim, _ = res.DimensionID(stats.RoleArea)
		entryDim, ok = findEntryDimension(table, res, spec.entries)
	}
	if !ok {
		b.logger.Warn(ctx, "[REPORT_SECTION_MISSING] Section table not found, zero-filling", logging.Fields{
			"section": spec.header,
		})
	}

	for _, entry := range spec.entries {
		cells := []Cell{Str(entry.Label), Empty()}
		for _, area := range areaConfigs {
			var value float64
			if ok {
				value = stats.Extract(table, map[string]string{
					areaDim:  area.Code,
					entryDim: resolveEntryCode(res, entryDim, entry),
				})
			}
			cells = append(cells, Count(value))
		}
		sheet.Rows = append(sheet.Rows, Row{Cells: cells})
	}
}

// addIndustrySections emits the establishment-count and employee-count
// industry sections. The same industry total may be tagged under any of the
// industry sub-classification dimensions depending on data vintage, so each
// cell tries every industry dimension in declaration order.
func (b *Builder) addIndustrySections(ctx context.Context, sheet *Sheet, tables []models.StatisticalTable, areaConfigs []models.AreaConfig) {
	table, res, ok := findTable(tables, industrySignatures)
	if !ok {
		b.logger.Warn(ctx, "[REPORT_SECTION_MISSING] Industry table not found, zero-filling", logging.Fields{
			"section": "industry",
		})
	}

	var areaDim, itemDim string
	var industryDims []string
	establishmentsItem := fallbackItemEstablishments
	employeesItem := fallbackItemEmployees
	if ok {
		areaDim, _ = res.DimensionID(stats.RoleArea)
		itemDim, _ = res.DimensionID(stats.RoleItem)
		industryDims = industryDimensions(table)
		if code, found := res.CodeForLabelToken(itemDim, stats.ItemTokenEstablishments); found {
			establishmentsItem = code
		}
		if code, found := res.CodeForLabelToken(itemDim, stats.ItemTokenEmployees); found {
			employeesItem = code
		}
	}

	sections := []struct {
		header   string
		itemCode string
	}{
		{header: "■ 産業別データ（事業所数）", itemCode: establishmentsItem},
		{header: "■ 産業別データ（従業者数）", itemCode: employeesItem},
	}

	for _, section := range sections {
		sheet.AddBlankRow()
		sheet.AddStyledRow(sectionHeaderStyle(), Str(section.header))
		sheet.AddRow(columnHeaderCells("産業", areaConfigs)...)

		for _, entry := range industryEntries {
			cells := []Cell{Str(entry.Label), Empty()}
			for _, area := range areaConfigs {
				var value float64
				if ok {
					required := map[string]string{
						areaDim: area.Code,
						itemDim: section.itemCode,
					}
					value = stats.ExtractAny(table, required, firstOf(industryDims), entryCodes(res, industryDims, entry))
					if len(industryDims) > 1 {
						for _, dim := range industryDims[1:] {
							if value != 0 {
								break
							}
							value = stats.ExtractAny(table, required, dim, entryCodes(res, []string{dim}, entry))
						}
					}
				}
				cells = append(cells, Count(value))
			}
			sheet.Rows = append(sheet.Rows, Row{Cells: cells})
		}
	}
}

func entryCodes(res *stats.Resolution, dims []string, entry catalogEntry) []string {
	codes := []string{}
	for _, dim := range dims {
		code := resolveEntryCode(res, dim, entry)
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		codes = append(codes, entry.Code)
	}
	return codes
}

func firstOf(dims []string) string {
	if len(dims) == 0 {
		return ""
	}
	return dims[0]
}

// buildSummarySheet lists the dataset's tables with their row counts plus
// the resolved place and query range.
func (b *Builder) buildSummarySheet(basic models.BasicInfo, dataset *models.StatisticalDataset, prefix string) Sheet {
	sheet := Sheet{Name: prefix + "サマリー"}

	place := strings.TrimSpace(fmt.Sprintf("%s %s %s",
		dataset.Position.Prefecture, dataset.Position.City, dataset.Position.Block))

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 16}, Str("商圏分析レポート"))
	sheet.AddBlankRow()
	sheet.AddRow(Str("場所"), Str(place))
	sheet.AddRow(Str("検索住所"), Str(basic.Address))
	sheet.AddRow(Str("検索範囲"), Str(RangeDescription(dataset.Parameter)))
	sheet.AddRow(Str("取得日時"), Str(dataset.Status.Date))
	sheet.AddBlankRow()
	sheet.AddStyledRow(RowStyle{Bold: true}, Str("テーブル一覧"))
	sheet.AddRow(strRow("No", "テーブル名", "統計名", "統計種別", "データ件数")...)

	totalObservations := 0
	for i, table := range dataset.Tables {
		totalObservations += len(table.Observations)
		sheet.AddRow(
			Num(float64(i+1)),
			Str(table.Title),
			Str(table.StatisticsName),
			Str(table.StatKind),
			Num(float64(len(table.Observations))),
		)
	}

	sheet.AddBlankRow()
	sheet.AddRow(Str("総テーブル数"), Num(float64(len(dataset.Tables))))
	sheet.AddRow(Str("総データポイント数"), Num(float64(totalObservations)))

	sheet.ColumnWidths = []float64{5, 40, 30, 15, 12}
	return sheet
}

// buildBasicInfoSheet records the query, its status and the resolved place.
func (b *Builder) buildBasicInfoSheet(basic models.BasicInfo, dataset *models.StatisticalDataset, prefix string) Sheet {
	sheet := Sheet{Name: prefix + "基本情報"}

	sheet.AddStyledRow(RowStyle{Bold: true}, Str("項目"), Str("値"))
	sheet.AddRow(Str("ステータス"), Num(float64(dataset.Status.Code)))
	sheet.AddRow(Str("メッセージ"), Str(dataset.Status.Message))
	sheet.AddRow(Str("取得日時"), Str(dataset.Status.Date))
	sheet.AddBlankRow()
	sheet.AddRow(Str("検索住所"), Str(basic.Address))
	sheet.AddRow(Str("緯度"), Str(dataset.Parameter.Latitude))
	sheet.AddRow(Str("経度"), Str(dataset.Parameter.Longitude))
	sheet.AddRow(Str("範囲タイプ"), Str(dataset.Parameter.RangeType))
	sheet.AddRow(Str("検索範囲"), Str(RangeDescription(dataset.Parameter)))
	sheet.AddBlankRow()
	sheet.AddRow(Str("都道府県"), Str(dataset.Position.Prefecture))
	sheet.AddRow(Str("市区町村"), Str(dataset.Position.City))
	sheet.AddRow(Str("町丁字"), Str(dataset.Position.Block))

	sheet.ColumnWidths = []float64{20, 50}
	return sheet
}

// buildDetailSheet prepends the table's identity rows to its transcription.
func (b *Builder) buildDetailSheet(table *models.StatisticalTable, name string) Sheet {
	sheet := Sheet{Name: name}
	sheet.AddRow(Str("統計名"), Str(table.StatisticsName))
	sheet.AddRow(Str("統計種別"), Str(table.StatKind))
	sheet.AddRow(Str("テーブル名"), Str(table.Title))
	sheet.AddBlankRow()

	body := Transcribe(table)
	sheet.Rows = append(sheet.Rows, body.Rows...)
	sheet.ColumnWidths = body.ColumnWidths
	return sheet
}

// buildCompetitorsSheet emits the rank-ordered competitor list with the map
// link rendered as a clickable reference.
func buildCompetitorsSheet(competitors []models.Competitor, prefix string) Sheet {
	sheet := Sheet{Name: prefix + "競合施設"}

	sheet.AddStyledRow(
		RowStyle{Bold: true, FontColor: fontWhite, FillColor: fillTableHeader, Centered: true},
		strRow("順位", "エリア", "施設名", "住所", "距離(m)", "評価", "レビュー数", "URL", "Place ID")...,
	)

	for i, comp := range competitors {
		tier := "-"
		if comp.Tier > 0 {
			tier = fmt.Sprintf("%d次", comp.Tier)
		}
		address := comp.Address
		if address == "" {
			address = "-"
		}

		ratingCell := Str("-")
		if comp.Rating > 0 {
			ratingCell = Cell{Kind: CellNumber, Number: comp.Rating, NumberFormat: "0.0"}
		}
		linkCell := Str("")
		if comp.MapLink != "" {
			linkCell = Link("Google Maps", comp.MapLink)
		}

		sheet.AddRow(
			Num(float64(i+1)),
			Str(tier),
			Str(comp.Name),
			Str(address),
			Count(comp.DistanceM),
			ratingCell,
			Count(float64(comp.ReviewCount)),
			linkCell,
			Str(comp.PlaceID),
		)
	}

	sheet.ColumnWidths = []float64{6, 8, 35, 45, 12, 8, 12, 20, 35}
	return sheet
}

// buildDualSummarySheet compares the two aggregation-type runs of "both"
// mode side by side.
func (b *Builder) buildDualSummarySheet(basic models.BasicInfo, circle, driveTime *models.AnalysisRun) Sheet {
	sheet := Sheet{Name: "サマリー"}

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 16}, Str("商圏分析レポート（両方モード）"))
	sheet.AddBlankRow()
	sheet.AddRow(Str("検索住所"), Str(basic.Address))
	sheet.AddRow(Str("緯度"), Num(basic.Latitude))
	sheet.AddRow(Str("経度"), Num(basic.Longitude))
	sheet.AddRow(Str("施設カテゴリ"), Str(basic.Category))
	sheet.AddBlankRow()

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 12}, Str("■ 円形範囲設定"))
	cp := circle.RangeParams
	sheet.AddRow(Str("1次エリア"), Str(fmt.Sprintf("%dm", orDefault(cp.Radius1, defaultRadius1M))))
	sheet.AddRow(Str("2次エリア"), Str(fmt.Sprintf("%dm", orDefault(cp.Radius2, defaultRadius2M))))
	sheet.AddRow(Str("3次エリア"), Str(fmt.Sprintf("%dm", orDefault(cp.Radius3, defaultRadius3M))))
	sheet.AddBlankRow()

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 12}, Str("■ 到達圏設定"))
	dp := driveTime.RangeParams
	sheet.AddRow(Str("1次エリア"), Str(fmt.Sprintf("%d分", orDefault(dp.Time1, defaultTime1Min))))
	sheet.AddRow(Str("2次エリア"), Str(fmt.Sprintf("%d分", orDefault(dp.Time2, defaultTime2Min))))
	sheet.AddRow(Str("3次エリア"), Str(fmt.Sprintf("%d分", orDefault(dp.Time3, defaultTime3Min))))
	speed := dp.SpeedKmh
	if speed == 0 {
		speed = defaultSpeedKmh
	}
	sheet.AddRow(Str("平均時速"), Str(fmt.Sprintf("%skm/h", trimFloat(speed))))
	sheet.AddRow(Str("移動手段"), Str(travelModeLabel(dp.TravelMode)))
	sheet.AddBlankRow()

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 12}, Str("■ データ概要"))
	sheet.AddRow(Str(""), Str("円形範囲"), Str("到達圏"))
	sheet.AddRow(Str("総人口"), Count(float64(totalPopulation(circle))), Count(float64(totalPopulation(driveTime))))
	sheet.AddRow(Str("競合施設数"), Num(float64(len(circle.Competitors))), Num(float64(len(driveTime.Competitors))))

	sheet.ColumnWidths = []float64{20, 20, 20}
	return sheet
}

// buildBasicReport is the fallback when no raw dataset is available: a
// compact report from the normalized population summary alone.
func (b *Builder) buildBasicReport(ctx context.Context, basic models.BasicInfo, run *models.AnalysisRun, prefix string) []Sheet {
	b.logger.Debug(ctx, "[REPORT_BUILD] Building basic report, no raw dataset", logging.Fields{
		"range_type": run.RangeParams.RangeType,
		"prefix":     prefix,
	})

	sheet := Sheet{Name: prefix + "基本レポート"}

	sheet.AddStyledRow(RowStyle{Bold: true, FontSize: 16}, Str("商圏分析レポート"))
	sheet.AddBlankRow()
	sheet.AddRow(Str("検索住所"), Str(basic.Address))
	sheet.AddRow(Str("緯度"), Num(basic.Latitude))
	sheet.AddRow(Str("経度"), Num(basic.Longitude))
	sheet.AddBlankRow()

	pop := run.Population
	if pop == nil {
		pop = models.NewPopulationSummary()
	}

	sheet.AddStyledRow(sectionHeaderStyle(), Str("■ 人口サマリー"))
	sheet.AddRow(Str("総人口"), Count(float64(pop.TotalPopulation)))
	sheet.AddBlankRow()

	sheet.AddStyledRow(sectionHeaderStyle(), Str("■ 年齢別人口"))
	sheet.AddRow(strRow("年齢層", "総数", "男", "女")...)
	for _, bracket := range ageBracketEntries {
		group, ok := pop.AgeGroups[bracket.Label]
		if !ok {
			group = &models.AgeGroupCounts{}
		}
		sheet.AddRow(
			Str(bracket.Label),
			Count(float64(group.Total)),
			Count(float64(group.Male)),
			Count(float64(group.Female)),
		)
	}
	sheet.AddBlankRow()

	sheet.AddStyledRow(sectionHeaderStyle(), Str("■ 産業別データ"))
	sheet.AddRow(strRow("産業", "事業所数", "従業者数")...)
	for _, entry := range industryEntries {
		counts, ok := pop.Industries[entry.Label]
		if !ok {
			counts = &models.IndustryCounts{}
		}
		sheet.AddRow(
			Str(entry.Label),
			Count(float64(counts.Establishments)),
			Count(float64(counts.Employees)),
		)
	}

	sheet.ColumnWidths = []float64{25, 15, 15, 15}

	sheets := []Sheet{sheet}
	if len(run.Competitors) > 0 {
		sheets = append(sheets, buildCompetitorsSheet(run.Competitors, prefix))
	}
	return sheets
}

func sectionHeaderStyle() RowStyle {
	return RowStyle{Bold: true, FontSize: 12, FillColor: fillSectionHeader}
}

// columnHeaderCells builds a section's column-header row: the entry label
// header, a spacer for the second fixed column, then one header per area.
func columnHeaderCells(rowLabel string, areaConfigs []models.AreaConfig) []Cell {
	cells := []Cell{Str(rowLabel), Empty()}
	for _, area := range areaConfigs {
		cells = append(cells, Str(area.DisplayName))
	}
	return cells
}

func ageBlockTitle(sexLabel string) string {
	return "【" + sexLabel + "】"
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func travelModeLabel(mode string) string {
	switch mode {
	case "walk":
		return "徒歩"
	case "bicycle":
		return "自転車"
	case "car", "":
		return "車"
	default:
		return mode
	}
}

func totalPopulation(run *models.AnalysisRun) int {
	if run == nil || run.Population == nil {
		return 0
	}
	return run.Population.TotalPopulation
}

// detailSheetName derives a stable workbook-safe name for one table's
// detail sheet: a positional tag plus the title truncated to 20 runes with
// the characters Excel forbids stripped out.
func detailSheetName(index int, title, prefix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, title)

	runes := []rune(cleaned)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return fmt.Sprintf("%sT%02d_%s", prefix, index+1, string(runes))
}
