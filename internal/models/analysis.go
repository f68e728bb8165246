package models

// PopulationSummary is the normalized output of the population aggregator,
// handed to the dashboard and export layers as plain structured data.
type PopulationSummary struct {
	TotalPopulation int                        `json:"total_population"`
	AgeGroups       map[string]*AgeGroupCounts `json:"age_groups"`
	Industries      map[string]*IndustryCounts `json:"industries"`
}

// AgeGroupCounts breaks one age bracket down by sex.
type AgeGroupCounts struct {
	Total  int `json:"total"`
	Male   int `json:"male"`
	Female int `json:"female"`
}

// IndustryCounts breaks one industry down by establishment and employee counts.
type IndustryCounts struct {
	Establishments int `json:"establishments"`
	Employees      int `json:"employees"`
}

// NewPopulationSummary returns an empty, well-formed summary. Degenerate
// datasets produce this rather than nil so downstream needs no extra
// null handling.
func NewPopulationSummary() *PopulationSummary {
	return &PopulationSummary{
		AgeGroups:  make(map[string]*AgeGroupCounts),
		Industries: make(map[string]*IndustryCounts),
	}
}

// AreaConfig names one comparison area for the report builder. Code matches
// the area dimension's codes in the dataset; DisplayName is caller-supplied
// (tier label or resolved municipality/prefecture name).
type AreaConfig struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// RangeParams describes the caller's query range for one run.
type RangeParams struct {
	RangeType  string  `json:"range_type"` // "circle" or "driveTime"
	Radius1    int     `json:"radius1,omitempty"`
	Radius2    int     `json:"radius2,omitempty"`
	Radius3    int     `json:"radius3,omitempty"`
	Time1      int     `json:"time1,omitempty"`
	Time2      int     `json:"time2,omitempty"`
	Time3      int     `json:"time3,omitempty"`
	SpeedKmh   float64 `json:"speed,omitempty"`
	TravelMode string  `json:"travel_mode,omitempty"`
}

// Range type identifiers used across the query and export paths.
const (
	RangeTypeCircle    = "circle"
	RangeTypeDriveTime = "driveTime"
	RangeTypeBoth      = "both"
)

// Competitor is one externally-supplied facility record for the competitor
// sheet. Tier is 1-3 for the numbered comparison areas, 0 when unassigned.
type Competitor struct {
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	DistanceM   float64 `json:"distance_m"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty"`
	MapLink     string  `json:"map_link,omitempty"`
	PlaceID     string  `json:"place_id,omitempty"`
	Tier        int     `json:"tier,omitempty"`
}

// MunicipalIncome is one municipality's income record from the reference
// store. Pointer fields are NULL when the source row left them blank.
type MunicipalIncome struct {
	MunicipalityCode string   `json:"municipality_code" db:"municipality_code"`
	MunicipalityName string   `json:"municipality_name" db:"municipality_name"`
	PrefectureName   string   `json:"prefecture_name" db:"prefecture_name"`
	DataYear         int      `json:"data_year" db:"data_year"`
	TaxpayerCount    *int64   `json:"taxpayer_count" db:"taxpayer_count"`
	TotalIncome      *int64   `json:"total_income" db:"total_income"`
	AverageIncome    *int64   `json:"average_income" db:"average_income"`
}

// FuturePopulation is one municipality's projected-population record.
type FuturePopulation struct {
	MunicipalityCode string         `json:"municipality_code"`
	MunicipalityName string         `json:"municipality_name"`
	PrefectureName   string         `json:"prefecture_name"`
	Projections      map[string]int `json:"projections"` // year -> population
}

// AnalysisRun bundles everything one aggregation-type run produced.
type AnalysisRun struct {
	RangeParams RangeParams         `json:"range_params"`
	Population  *PopulationSummary  `json:"population"`
	Competitors []Competitor        `json:"competitors,omitempty"`
	Dataset     *StatisticalDataset `json:"dataset,omitempty"`
}

// BasicInfo carries the caller-facing facts about the analyzed location.
type BasicInfo struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Category  string  `json:"category,omitempty"`
	RangeType string  `json:"range_type"`
}

// ExportRequest is the report/CSV export input: one run for circle or
// drive-time mode, both runs for dual mode.
type ExportRequest struct {
	BasicInfo BasicInfo    `json:"basic_info"`
	Run       *AnalysisRun `json:"run,omitempty"`
	Circle    *AnalysisRun `json:"circle,omitempty"`
	DriveTime *AnalysisRun `json:"drive_time,omitempty"`
}

// AnalysisResult is the dashboard-facing response of one analysis.
type AnalysisResult struct {
	BasicInfo        BasicInfo          `json:"basic_info"`
	Population       *PopulationSummary `json:"population"`
	Competitors      []Competitor       `json:"competitors,omitempty"`
	Income           *MunicipalIncome   `json:"income,omitempty"`
	FuturePopulation *FuturePopulation  `json:"future_population,omitempty"`
	Dataset          *StatisticalDataset `json:"dataset,omitempty"`
}
