package stats

import (
	"testing"

	"tradearea-platform/internal/models"
)

func TestExtract(t *testing.T) {
	table := ageBySexTable()

	tests := []struct {
		name   string
		filter map[string]string
		want   float64
	}{
		{
			name:   "exact match",
			filter: map[string]string{"area": "R001", "cat01": "3201", "cat02": "3302"},
			want:   90,
		},
		{
			name:   "partial filter returns first match",
			filter: map[string]string{"cat01": "3200"},
			want:   100,
		},
		{
			name:   "missing observation yields zero",
			filter: map[string]string{"area": "R002", "cat01": "3200", "cat02": "3301"},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(&table, tt.filter); got != tt.want {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractNonNumericYieldsZero(t *testing.T) {
	table := models.StatisticalTable{
		Observations: []models.Observation{
			obs("-", map[string]string{"area": "R001"}),
			obs("秘匿", map[string]string{"area": "R002"}),
			obs("1234.5", map[string]string{"area": "R003"}),
			obs("NaN", map[string]string{"area": "R010"}),
			obs("Inf", map[string]string{"area": "R100"}),
			obs("-Inf", map[string]string{"area": "R101"}),
		},
	}

	if got := Extract(&table, map[string]string{"area": "R001"}); got != 0 {
		t.Errorf("dash value: got %v, want 0", got)
	}
	if got := Extract(&table, map[string]string{"area": "R002"}); got != 0 {
		t.Errorf("text value: got %v, want 0", got)
	}
	if got := Extract(&table, map[string]string{"area": "R003"}); got != 1234.5 {
		t.Errorf("decimal value: got %v, want 1234.5", got)
	}
	// ParseFloat parses these literals successfully; extraction must still
	// treat them as 0, never as NaN or infinity.
	if got := Extract(&table, map[string]string{"area": "R010"}); got != 0 {
		t.Errorf("NaN literal: got %v, want 0", got)
	}
	if got := Extract(&table, map[string]string{"area": "R100"}); got != 0 {
		t.Errorf("Inf literal: got %v, want 0", got)
	}
	if got := Extract(&table, map[string]string{"area": "R101"}); got != 0 {
		t.Errorf("negative Inf literal: got %v, want 0", got)
	}
}

func TestExtractAny(t *testing.T) {
	table := models.StatisticalTable{
		Observations: []models.Observation{
			obs("55", map[string]string{"area": "R001", "cat01": "1", "cat03": "4202"}),
			obs("77", map[string]string{"area": "R001", "cat01": "1", "cat04": "4202"}),
		},
	}
	required := map[string]string{"area": "R001", "cat01": "1"}

	if got := ExtractAny(&table, required, "cat03", []string{"4202"}); got != 55 {
		t.Errorf("first dimension: got %v, want 55", got)
	}
	if got := ExtractAny(&table, required, "cat04", []string{"4202"}); got != 77 {
		t.Errorf("alternate dimension: got %v, want 77", got)
	}
	if got := ExtractAny(&table, required, "cat03", []string{"4999"}); got != 0 {
		t.Errorf("no code match: got %v, want 0", got)
	}
	if got := ExtractAny(nil, required, "cat03", []string{"4202"}); got != 0 {
		t.Errorf("nil table: got %v, want 0", got)
	}
}

func TestFind(t *testing.T) {
	table := ageBySexTable()

	o, ok := Find(&table, map[string]string{"cat01": "3202", "cat02": "3302"})
	if !ok {
		t.Fatal("expected a match")
	}
	if o.Value != "110" {
		t.Errorf("got value %q, want 110", o.Value)
	}

	if _, ok := Find(&table, map[string]string{"cat01": "9999"}); ok {
		t.Error("expected no match for unknown code")
	}
	if _, ok := Find(nil, nil); ok {
		t.Error("expected no match on nil table")
	}
}
