package report

import (
	"strings"
	"testing"

	"tradearea-platform/internal/models"
)

func TestBuildAreaConfigsCircle(t *testing.T) {
	position := models.Position{Prefecture: "東京都", City: "千代田区"}

	tests := []struct {
		name      string
		params    models.RangeParams
		wantNames []string
	}{
		{
			name:      "defaults",
			params:    models.RangeParams{RangeType: models.RangeTypeCircle},
			wantNames: []string{"1次エリア(0.5km)", "2次エリア(1km)", "3次エリア(2km)", "千代田区", "東京都"},
		},
		{
			name: "custom radii",
			params: models.RangeParams{
				RangeType: models.RangeTypeCircle,
				Radius1:   300, Radius2: 1500, Radius3: 3000,
			},
			wantNames: []string{"1次エリア(0.3km)", "2次エリア(1.5km)", "3次エリア(3km)", "千代田区", "東京都"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs, note := BuildAreaConfigs(tt.params, position)
			if len(configs) != 5 {
				t.Fatalf("got %d configs, want 5", len(configs))
			}

			wantCodes := []string{AreaCodeTier1, AreaCodeTier2, AreaCodeTier3, AreaCodeMunicipality, AreaCodePrefecture}
			for i, config := range configs {
				if config.Code != wantCodes[i] {
					t.Errorf("config %d code = %q, want %q", i, config.Code, wantCodes[i])
				}
				if config.DisplayName != tt.wantNames[i] {
					t.Errorf("config %d name = %q, want %q", i, config.DisplayName, tt.wantNames[i])
				}
			}

			if !strings.HasPrefix(note, "※1次エリア=") {
				t.Errorf("note = %q, want literal range prefix", note)
			}
		})
	}
}

func TestBuildAreaConfigsDriveTime(t *testing.T) {
	params := models.RangeParams{
		RangeType: models.RangeTypeDriveTime,
		Time1:     5, Time2: 10, Time3: 20,
		SpeedKmh: 40,
	}
	configs, note := BuildAreaConfigs(params, models.Position{})

	wantNames := []string{"1次エリア(5分)", "2次エリア(10分)", "3次エリア(20分)", "市区町村", "都道府県"}
	for i, config := range configs {
		if config.DisplayName != wantNames[i] {
			t.Errorf("config %d name = %q, want %q", i, config.DisplayName, wantNames[i])
		}
	}

	if !strings.Contains(note, "(40km/h)") {
		t.Errorf("note = %q, want speed annotation", note)
	}
}

func TestBuildAreaConfigsPositionFallbacks(t *testing.T) {
	configs, _ := BuildAreaConfigs(models.RangeParams{RangeType: models.RangeTypeCircle}, models.Position{})
	if configs[3].DisplayName != "市区町村" {
		t.Errorf("city fallback = %q", configs[3].DisplayName)
	}
	if configs[4].DisplayName != "都道府県" {
		t.Errorf("prefecture fallback = %q", configs[4].DisplayName)
	}
}

func TestRangeDescription(t *testing.T) {
	tests := []struct {
		name  string
		param models.QueryParameter
		want  string
	}{
		{
			name: "circle",
			param: models.QueryParameter{
				RangeType: models.RangeTypeCircle,
				Radii:     []string{"500", "1000", "2000"},
			},
			want: "半径 500m, 1000m, 2000m",
		},
		{
			name: "drive time",
			param: models.QueryParameter{
				RangeType: models.RangeTypeDriveTime,
				Times:     []string{"5", "10", "20"},
				Speed:     "30",
			},
			want: "到達圏 5分, 10分, 20分 (30km/h)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RangeDescription(tt.param); got != tt.want {
				t.Errorf("RangeDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}
