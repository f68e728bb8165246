package export

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/width"

	"tradearea-platform/internal/models"
)

const fileNameTimeLayout = "20060102_150405"

var (
	postalCodePattern  = regexp.MustCompile(`〒?\d{3}-?\d{4}\s*`)
	prefecturePattern  = regexp.MustCompile(`^(東京都|北海道|大阪府|京都府|.{2,3}県)`)
	blockNumberPattern = regexp.MustCompile(`\d+(-\d+)*(丁目|番地?|号)?$`)
	unsafePattern      = regexp.MustCompile(`[\\/:*?"<>|\s]+`)
)

// ReportFileName derives the download name for one report artifact:
// 商圏分析レポート_{モード}_{カテゴリ}_{短縮住所}_{タイムスタンプ}.xlsx
func ReportFileName(basic models.BasicInfo, now time.Time) string {
	parts := []string{"商圏分析レポート", rangeTypeLabel(basic.RangeType)}

	if category := sanitizePart(basic.Category); category != "" {
		parts = append(parts, category)
	}
	if address := ShortenAddress(basic.Address); address != "" {
		parts = append(parts, address)
	}

	parts = append(parts, now.Format(fileNameTimeLayout))
	return strings.Join(parts, "_") + ".xlsx"
}

// CSVFileName is the CSV variant of the report download name.
func CSVFileName(basic models.BasicInfo, now time.Time) string {
	name := ReportFileName(basic, now)
	return strings.TrimSuffix(name, ".xlsx") + ".csv"
}

func rangeTypeLabel(rangeType string) string {
	switch rangeType {
	case models.RangeTypeDriveTime:
		return "到達圏"
	case models.RangeTypeBoth:
		return "両方"
	default:
		return "円形"
	}
}

// ShortenAddress compacts a geocoded address into a filename-friendly
// fragment: country and postal-code prefixes, the prefecture, trailing block
// numbers and filesystem-unsafe characters go, full-width digits fold to
// ASCII, and the result caps at 20 runes.
// dashFolder maps the dash variants geocoders emit onto ASCII hyphen;
// width folding only covers the fullwidth form.
var dashFolder = strings.NewReplacer("−", "-", "‐", "-", "–", "-")

func ShortenAddress(address string) string {
	s := width.Fold.String(strings.TrimSpace(address))
	s = dashFolder.Replace(s)

	s = strings.TrimPrefix(s, "日本、")
	s = strings.TrimPrefix(s, "日本 ")
	s = postalCodePattern.ReplaceAllString(s, "")
	s = prefecturePattern.ReplaceAllString(s, "")
	s = blockNumberPattern.ReplaceAllString(s, "")
	s = unsafePattern.ReplaceAllString(s, "")
	s = strings.Trim(s, "、,-")

	runes := []rune(s)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return string(runes)
}

func sanitizePart(s string) string {
	return strings.Trim(unsafePattern.ReplaceAllString(strings.TrimSpace(s), ""), "_")
}

// EncodeFileName renders the Content-Disposition value for a non-ASCII
// filename, with a plain ASCII fallback for legacy clients.
func EncodeFileName(name string) string {
	fallback := "report"
	if i := strings.LastIndex(name, "."); i >= 0 {
		fallback += name[i:]
	}
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + url.PathEscape(name)
}
