package report

import (
	"fmt"
	"strconv"
	"strings"

	"tradearea-platform/internal/models"
)

// Area codes the statistics provider assigns to aggregation areas: three
// numbered tiers plus the municipality and prefecture pseudo-areas.
const (
	AreaCodeTier1        = "R001"
	AreaCodeTier2        = "R002"
	AreaCodeTier3        = "R003"
	AreaCodeMunicipality = "R010"
	AreaCodePrefecture   = "R100"
)

// Default range parameters applied when the caller leaves them unset.
const (
	defaultRadius1M = 500
	defaultRadius2M = 1000
	defaultRadius3M = 2000

	defaultTime1Min = 5
	defaultTime2Min = 10
	defaultTime3Min = 20

	defaultSpeedKmh = 30
)

// BuildAreaConfigs synthesizes the ordered comparison-area list for one run:
// three numbered tiers labeled from the configured radii or drive times,
// then the municipality and prefecture pseudo-areas labeled from the
// dataset's own resolved place names. The note text states the literal
// configured radii/times and is rendered above the comparison table.
func BuildAreaConfigs(params models.RangeParams, position models.Position) ([]models.AreaConfig, string) {
	if params.RangeType == models.RangeTypeDriveTime {
		t1, t2, t3 := params.Time1, params.Time2, params.Time3
		if t1 == 0 {
			t1 = defaultTime1Min
		}
		if t2 == 0 {
			t2 = defaultTime2Min
		}
		if t3 == 0 {
			t3 = defaultTime3Min
		}
		speed := params.SpeedKmh
		if speed == 0 {
			speed = defaultSpeedKmh
		}

		configs := []models.AreaConfig{
			{Code: AreaCodeTier1, DisplayName: fmt.Sprintf("1次エリア(%d分)", t1)},
			{Code: AreaCodeTier2, DisplayName: fmt.Sprintf("2次エリア(%d分)", t2)},
			{Code: AreaCodeTier3, DisplayName: fmt.Sprintf("3次エリア(%d分)", t3)},
			{Code: AreaCodeMunicipality, DisplayName: cityName(position)},
			{Code: AreaCodePrefecture, DisplayName: prefectureName(position)},
		}
		note := fmt.Sprintf("※1次エリア=%d分, 2次エリア=%d分, 3次エリア=%d分 (%skm/h), %s, %s",
			t1, t2, t3, trimFloat(speed), configs[3].DisplayName, configs[4].DisplayName)
		return configs, note
	}

	r1, r2, r3 := params.Radius1, params.Radius2, params.Radius3
	if r1 == 0 {
		r1 = defaultRadius1M
	}
	if r2 == 0 {
		r2 = defaultRadius2M
	}
	if r3 == 0 {
		r3 = defaultRadius3M
	}

	configs := []models.AreaConfig{
		{Code: AreaCodeTier1, DisplayName: fmt.Sprintf("1次エリア(%skm)", kmString(r1))},
		{Code: AreaCodeTier2, DisplayName: fmt.Sprintf("2次エリア(%skm)", kmString(r2))},
		{Code: AreaCodeTier3, DisplayName: fmt.Sprintf("3次エリア(%skm)", kmString(r3))},
		{Code: AreaCodeMunicipality, DisplayName: cityName(position)},
		{Code: AreaCodePrefecture, DisplayName: prefectureName(position)},
	}
	note := fmt.Sprintf("※1次エリア=%skm, 2次エリア=%skm, 3次エリア=%skm, %s, %s",
		kmString(r1), kmString(r2), kmString(r3), configs[3].DisplayName, configs[4].DisplayName)
	return configs, note
}

// kmString renders meters as kilometers without trailing zeros, so 500
// becomes "0.5" and 1000 becomes "1".
func kmString(meters int) string {
	return trimFloat(float64(meters) / 1000)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cityName(position models.Position) string {
	if strings.TrimSpace(position.City) != "" {
		return position.City
	}
	return "市区町村"
}

func prefectureName(position models.Position) string {
	if strings.TrimSpace(position.Prefecture) != "" {
		return position.Prefecture
	}
	return "都道府県"
}

// RangeDescription summarizes the resolved query range for the summary and
// basic-info sheets, e.g. "半径 500m, 1000m, 2000m" or "到達圏 5分, 10分, 20分 (30km/h)".
func RangeDescription(param models.QueryParameter) string {
	if param.RangeType == models.RangeTypeDriveTime {
		times := strings.Join(param.Times, "分, ")
		if times != "" {
			times += "分"
		}
		return fmt.Sprintf("到達圏 %s (%skm/h)", times, param.Speed)
	}
	radii := strings.Join(param.Radii, "m, ")
	if radii != "" {
		radii += "m"
	}
	return fmt.Sprintf("半径 %s", radii)
}
