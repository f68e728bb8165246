package export

import (
	"strings"
	"testing"
	"time"

	"tradearea-platform/internal/models"
)

func TestShortenAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{
			name:    "full geocoded address",
			address: "日本、〒100-0005 東京都千代田区丸の内1-1-1",
			want:    "千代田区丸の内",
		},
		{
			name:    "full-width digits folded then stripped",
			address: "東京都新宿区西新宿２−８−１",
			want:    "新宿区西新宿",
		},
		{
			name:    "prefecture only prefix",
			address: "神奈川県横浜市中区日本大通1",
			want:    "横浜市中区日本大通",
		},
		{
			name:    "long address capped at 20 runes",
			address: strings.Repeat("長", 30),
			want:    strings.Repeat("長", 20),
		},
		{
			name:    "empty",
			address: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortenAddress(tt.address); got != tt.want {
				t.Errorf("ShortenAddress(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestReportFileName(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 5, 0, time.Local)

	tests := []struct {
		name  string
		basic models.BasicInfo
		want  string
	}{
		{
			name: "circle with category and address",
			basic: models.BasicInfo{
				RangeType: models.RangeTypeCircle,
				Category:  "コンビニ",
				Address:   "東京都千代田区丸の内",
			},
			want: "商圏分析レポート_円形_コンビニ_千代田区丸の内_20250601_143005.xlsx",
		},
		{
			name:  "drive time without optional parts",
			basic: models.BasicInfo{RangeType: models.RangeTypeDriveTime},
			want:  "商圏分析レポート_到達圏_20250601_143005.xlsx",
		},
		{
			name:  "both mode",
			basic: models.BasicInfo{RangeType: models.RangeTypeBoth},
			want:  "商圏分析レポート_両方_20250601_143005.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReportFileName(tt.basic, now); got != tt.want {
				t.Errorf("ReportFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSVFileName(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 5, 0, time.Local)
	got := CSVFileName(models.BasicInfo{RangeType: models.RangeTypeCircle}, now)
	if !strings.HasSuffix(got, ".csv") {
		t.Errorf("CSVFileName() = %q, want .csv suffix", got)
	}
}

func TestEncodeFileName(t *testing.T) {
	got := EncodeFileName("商圏分析レポート_円形.xlsx")
	if !strings.HasPrefix(got, `attachment; filename="report.xlsx"; filename*=UTF-8''`) {
		t.Errorf("EncodeFileName() = %q, want RFC 5987 form with ASCII fallback", got)
	}
	if strings.ContainsAny(got, "商圏") {
		t.Error("raw non-ASCII must not appear in the header value")
	}
}
