package stats

import "tradearea-platform/internal/models"

func dim(id, name string, codes ...models.CodeLabel) models.Dimension {
	return models.Dimension{ID: id, Name: name, Codes: codes}
}

func cl(code, label string) models.CodeLabel {
	return models.CodeLabel{Code: code, Label: label}
}

func obs(value string, tags map[string]string) models.Observation {
	return models.Observation{Value: value, Unit: "人", Tags: tags}
}

// ageBySexTable builds a small age×sex×area cross-tabulation with two age
// brackets, all three sex rows and a single tier-1 area.
func ageBySexTable() models.StatisticalTable {
	return models.StatisticalTable{
		Title: "年齢別人口（男女別、5歳階級）",
		Classifications: []models.Dimension{
			dim("area", "集計範囲", cl("R001", "1次エリア")),
			dim("cat01", "男女別", cl("3200", "男女計"), cl("3201", "男"), cl("3202", "女")),
			dim("cat02", "年齢5歳階級", cl("3301", "4歳以下"), cl("3302", "5～9歳")),
		},
		Observations: []models.Observation{
			obs("100", map[string]string{"area": "R001", "cat01": "3200", "cat02": "3301"}),
			obs("60", map[string]string{"area": "R001", "cat01": "3201", "cat02": "3301"}),
			obs("40", map[string]string{"area": "R001", "cat01": "3202", "cat02": "3301"}),
			obs("200", map[string]string{"area": "R001", "cat01": "3200", "cat02": "3302"}),
			obs("90", map[string]string{"area": "R001", "cat01": "3201", "cat02": "3302"}),
			obs("110", map[string]string{"area": "R001", "cat01": "3202", "cat02": "3302"}),
		},
	}
}

// industryTable builds a small industry×item×area table.
func industryTable() models.StatisticalTable {
	return models.StatisticalTable{
		Title: "産業別データ",
		Classifications: []models.Dimension{
			dim("area", "集計範囲", cl("R001", "1次エリア")),
			dim("cat01", "産業分類", cl("4201", "第１次産業"), cl("4203", "第３次産業")),
			dim("cat02", "項目", cl("1", "事業所数"), cl("2", "従業者数")),
		},
		Observations: []models.Observation{
			obs("12", map[string]string{"area": "R001", "cat01": "4201", "cat02": "1"}),
			obs("85", map[string]string{"area": "R001", "cat01": "4201", "cat02": "2"}),
			obs("340", map[string]string{"area": "R001", "cat01": "4203", "cat02": "1"}),
			obs("5100", map[string]string{"area": "R001", "cat01": "4203", "cat02": "2"}),
		},
	}
}
