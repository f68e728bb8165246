package stats

import (
	"math"
	"strconv"

	"tradearea-platform/internal/models"
)

// Find returns the first observation whose tag set matches every entry of
// the filter exactly.
func Find(table *models.StatisticalTable, filter map[string]string) (*models.Observation, bool) {
	if table == nil {
		return nil, false
	}
	for i := range table.Observations {
		if tagsMatch(table.Observations[i].Tags, filter) {
			return &table.Observations[i], true
		}
	}
	return nil, false
}

// Extract returns the numeric value of the first observation matching the
// filter. Missing observations and unparseable values both yield 0: sparse
// cross-tabulations are expected and the report must render 0 rather than
// omit the cell.
func Extract(table *models.StatisticalTable, filter map[string]string) float64 {
	obs, ok := Find(table, filter)
	if !ok {
		return 0
	}
	return NumericValue(obs)
}

// ExtractAny is the higher-detail variant: the filter must match on all
// required dimensions, and the observation's code on anyDimension must be
// one of the alternative codes. Industry totals are tagged under different
// sub-classification codes depending on data vintage, which is what this
// exists for.
func ExtractAny(table *models.StatisticalTable, required map[string]string, anyDimension string, codes []string) float64 {
	if table == nil {
		return 0
	}
	for i := range table.Observations {
		obs := &table.Observations[i]
		if !tagsMatch(obs.Tags, required) {
			continue
		}
		got, ok := obs.Tags[anyDimension]
		if !ok {
			continue
		}
		for _, code := range codes {
			if got == code {
				return NumericValue(obs)
			}
		}
	}
	return 0
}

// NumericValue coerces an observation's value to a number. Non-numeric
// strings coerce to 0; aggregated output never carries raw strings.
func NumericValue(obs *models.Observation) float64 {
	if obs == nil {
		return 0
	}
	return parseNumber(obs.Value)
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// ParseFloat accepts the literals "NaN" and "Inf"; neither is a usable
	// count and both would corrupt integer accumulation downstream.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func tagsMatch(tags, filter map[string]string) bool {
	for dim, code := range filter {
		if tags[dim] != code {
			return false
		}
	}
	return true
}
