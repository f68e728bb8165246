package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tradearea-platform/internal/models"
	"tradearea-platform/internal/report"
)

// utf8BOM is prepended so spreadsheet applications detect the encoding and
// render Japanese text correctly.
const utf8BOM = "\uFEFF"

// WriteCSV streams the analysis as CSV. Dual-mode requests emit both runs
// back to back, each under its own mode heading.
func WriteCSV(w io.Writer, req *models.ExportRequest) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	switch {
	case req.Circle != nil && req.DriveTime != nil:
		if err := writeRunSections(cw, req.BasicInfo, req.Circle, "円形範囲"); err != nil {
			return err
		}
		if err := cw.Write([]string{""}); err != nil {
			return err
		}
		if err := writeRunSections(cw, req.BasicInfo, req.DriveTime, "到達圏"); err != nil {
			return err
		}
	case req.Run != nil:
		if err := writeRunSections(cw, req.BasicInfo, req.Run, ""); err != nil {
			return err
		}
	default:
		return fmt.Errorf("export request carries no analysis run")
	}

	cw.Flush()
	return cw.Error()
}

func writeRunSections(cw *csv.Writer, basic models.BasicInfo, run *models.AnalysisRun, modeHeading string) error {
	if modeHeading != "" {
		if err := cw.Write([]string{"【" + modeHeading + "】"}); err != nil {
			return err
		}
	}

	records := [][]string{
		{"■ 基本情報"},
		{"検索住所", basic.Address},
		{"緯度", strconv.FormatFloat(basic.Latitude, 'f', -1, 64)},
		{"経度", strconv.FormatFloat(basic.Longitude, 'f', -1, 64)},
		nil,
	}

	pop := run.Population
	if pop == nil {
		pop = models.NewPopulationSummary()
	}

	records = append(records,
		[]string{"■ 人口サマリー"},
		[]string{"総人口", strconv.Itoa(pop.TotalPopulation)},
		nil,
		[]string{"■ 年齢別人口"},
		[]string{"年齢層", "総数", "男", "女"},
	)
	for _, label := range report.AgeBracketLabels() {
		group := pop.AgeGroups[label]
		if group == nil {
			group = &models.AgeGroupCounts{}
		}
		records = append(records, []string{
			label,
			strconv.Itoa(group.Total),
			strconv.Itoa(group.Male),
			strconv.Itoa(group.Female),
		})
	}

	records = append(records,
		nil,
		[]string{"■ 産業別データ"},
		[]string{"産業", "事業所数", "従業者数"},
	)
	for _, label := range report.IndustryLabels() {
		counts := pop.Industries[label]
		if counts == nil {
			counts = &models.IndustryCounts{}
		}
		records = append(records, []string{
			label,
			strconv.Itoa(counts.Establishments),
			strconv.Itoa(counts.Employees),
		})
	}

	if len(run.Competitors) > 0 {
		records = append(records,
			nil,
			[]string{"■ 競合施設"},
			[]string{"順位", "エリア", "施設名", "住所", "距離(m)", "評価", "レビュー数"},
		)
		for i, comp := range run.Competitors {
			tier := "-"
			if comp.Tier > 0 {
				tier = fmt.Sprintf("%d次", comp.Tier)
			}
			rating := "-"
			if comp.Rating > 0 {
				rating = strconv.FormatFloat(comp.Rating, 'f', 1, 64)
			}
			records = append(records, []string{
				strconv.Itoa(i + 1),
				tier,
				comp.Name,
				comp.Address,
				strconv.FormatFloat(comp.DistanceM, 'f', 0, 64),
				rating,
				strconv.Itoa(comp.ReviewCount),
			})
		}
	}

	for _, record := range records {
		if record == nil {
			record = []string{""}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}
