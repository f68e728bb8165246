package refdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"tradearea-platform/internal/models"
)

// incomeHeaderRows is the number of preamble rows before income data starts:
// title, fiscal year, blank line and the column header.
const incomeHeaderRows = 4

// taxCategoryMunicipal marks the rows carrying municipal tax figures; the
// source file interleaves prefectural tax rows that must be skipped.
const taxCategoryMunicipal = "市町村民税"

// Income CSV column layout: fiscal year, municipality identity, tax
// category, then the two figures.
const (
	incomeColYear = iota
	incomeColCode
	incomeColPrefecture
	incomeColMunicipality
	incomeColCategory
	incomeColTaxpayers
	incomeColTotalIncome
	incomeColCount
)

// defaultIncomeDataYear stands in when a row's year cell is unparseable.
const defaultIncomeDataYear = 2024

// ParseIncomeCSV decodes the municipal taxable-income survey CSV. Rows for
// other tax categories and rows with malformed numbers are skipped, not
// fatal; a file yielding no usable rows is an error.
func ParseIncomeCSV(r io.Reader) ([]*models.MunicipalIncome, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	var records []*models.MunicipalIncome
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read income CSV line %d: %w", line+1, err)
		}
		line++

		if line <= incomeHeaderRows {
			continue
		}
		if len(row) < incomeColCount {
			continue
		}
		if strings.TrimSpace(row[incomeColCategory]) != taxCategoryMunicipal {
			continue
		}

		code := strings.TrimSpace(row[incomeColCode])
		name := strings.TrimSpace(row[incomeColMunicipality])
		if code == "" || name == "" {
			continue
		}

		rec := &models.MunicipalIncome{
			MunicipalityCode: code,
			MunicipalityName: name,
			PrefectureName:   strings.TrimSpace(row[incomeColPrefecture]),
			DataYear:         defaultIncomeDataYear,
		}
		if v, ok := parseGroupedInt(row[incomeColYear]); ok && v > 0 {
			rec.DataYear = int(v)
		}

		if v, ok := parseGroupedInt(row[incomeColTaxpayers]); ok {
			rec.TaxpayerCount = &v
		}
		if v, ok := parseGroupedInt(row[incomeColTotalIncome]); ok {
			rec.TotalIncome = &v
		}
		if rec.TaxpayerCount != nil && rec.TotalIncome != nil && *rec.TaxpayerCount > 0 {
			avg := int64(math.Round(float64(*rec.TotalIncome) / float64(*rec.TaxpayerCount)))
			rec.AverageIncome = &avg
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("income CSV contains no municipal tax rows")
	}
	return records, nil
}

// parseGroupedInt parses a digit-grouped value like "1,234,567". Dashes and
// empty cells report false rather than zero so the record keeps a NULL.
func parseGroupedInt(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// futurePopulationFile is the projection file layout: one entry per
// municipality with a year→population map.
type futurePopulationFile []struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Prefecture  string         `json:"prefecture"`
	Projections map[string]int `json:"projections"`
}

// ParseFuturePopulationJSON decodes the municipal projection file.
func ParseFuturePopulationJSON(r io.Reader) ([]*models.FuturePopulation, error) {
	var file futurePopulationFile
	if err := json.NewDecoder(stripBOM(r)).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode future population file: %w", err)
	}

	records := make([]*models.FuturePopulation, 0, len(file))
	for _, entry := range file {
		if entry.Code == "" || entry.Name == "" {
			continue
		}
		records = append(records, &models.FuturePopulation{
			MunicipalityCode: normalizeCode(entry.Code),
			MunicipalityName: entry.Name,
			PrefectureName:   entry.Prefecture,
			Projections:      entry.Projections,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("future population file contains no records")
	}
	return records, nil
}

// normalizeCode zero-pads numeric municipality codes to five digits so
// lookups by code line up across source files.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) >= 5 {
		return code
	}
	if _, err := strconv.Atoi(code); err != nil {
		return code
	}
	return strings.Repeat("0", 5-len(code)) + code
}

// stripBOM drops a leading UTF-8 BOM, which government CSV downloads
// regularly carry.
func stripBOM(r io.Reader) io.Reader {
	br := &bomReader{r: r}
	return br
}

type bomReader struct {
	r       io.Reader
	checked bool
	buf     []byte
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(b.r, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, err
		}
		head = head[:n]
		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			b.buf = head
		}
	}

	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}
	return b.r.Read(p)
}
