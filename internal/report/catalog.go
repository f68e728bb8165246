package report

import (
	"strings"

	"tradearea-platform/internal/models"
	"tradearea-platform/internal/stats"
)

// catalogEntry is one fixed row of a comparison section. Code is the code
// the entry historically carries; the label is authoritative and the code is
// re-resolved against the table's own classification whenever the label is
// declared there, so a vintage that renumbered codes still lines up.
type catalogEntry struct {
	Code  string
	Label string
}

// Population-by-sex section (3 rows).
var genderEntries = []catalogEntry{
	{Code: "1200", Label: "男女計"},
	{Code: "1201", Label: "男"},
	{Code: "1202", Label: "女"},
}

// Sex blocks of the age-bracket section, repeated once per block.
var sexBlockEntries = []catalogEntry{
	{Code: "3200", Label: "男女計"},
	{Code: "3201", Label: "男"},
	{Code: "3202", Label: "女"},
}

// Fixed 16-bracket age catalog (5-year brackets).
var ageBracketEntries = []catalogEntry{
	{Code: "3301", Label: "4歳以下"},
	{Code: "3302", Label: "5～9歳"},
	{Code: "3303", Label: "10～14歳"},
	{Code: "3304", Label: "15～19歳"},
	{Code: "3305", Label: "20～24歳"},
	{Code: "3306", Label: "25～29歳"},
	{Code: "3307", Label: "30～34歳"},
	{Code: "3308", Label: "35～39歳"},
	{Code: "3309", Label: "40～44歳"},
	{Code: "3310", Label: "45～49歳"},
	{Code: "3311", Label: "50～54歳"},
	{Code: "3312", Label: "55～59歳"},
	{Code: "3313", Label: "60～64歳"},
	{Code: "3314", Label: "65～69歳"},
	{Code: "3315", Label: "70～74歳"},
	{Code: "3316", Label: "75歳以上"},
}

// Household section (3 rows).
var householdEntries = []catalogEntry{
	{Code: "1500", Label: "一般世帯"},
	{Code: "1501", Label: "単身世帯"},
	{Code: "1502", Label: "２人以上世帯"},
}

// Industry section (4 rows), used once for establishment counts and once
// for employee counts.
var industryEntries = []catalogEntry{
	{Code: "4200", Label: "総数(公務除く)"},
	{Code: "4201", Label: "第１次産業"},
	{Code: "4202", Label: "第２次産業"},
	{Code: "4203", Label: "第３次産業"},
}

// AgeBracketLabels returns the fixed age-bracket row order for tabular
// population output.
func AgeBracketLabels() []string {
	labels := make([]string, len(ageBracketEntries))
	for i, entry := range ageBracketEntries {
		labels[i] = entry.Label
	}
	return labels
}

// IndustryLabels returns the fixed industry row order.
func IndustryLabels() []string {
	labels := make([]string, len(industryEntries))
	for i, entry := range industryEntries {
		labels[i] = entry.Label
	}
	return labels
}

// Fallback item codes for the industry table when the item dimension does
// not declare labels containing the establishment/employee tokens.
const (
	fallbackItemEstablishments = "1"
	fallbackItemEmployees      = "2"
)

// tableSignature locates a section's source table by content: the title
// must contain every token and none of the excludes, and the table must
// resolve every required role. This replaces the upstream convention of
// fixed positional indices, which silently corrupts the report when the
// provider reorders tables.
type tableSignature struct {
	tokens   []string
	excludes []string
	roles    []stats.Role
}

var (
	sexTotalsSignatures = []tableSignature{
		{tokens: []string{"男女"}, excludes: []string{"年齢"}, roles: []stats.Role{stats.RoleArea, stats.RoleSex}},
	}
	ageBySexSignatures = []tableSignature{
		{tokens: []string{"年齢", "男女", "5歳階級"}, roles: []stats.Role{stats.RoleArea, stats.RoleAge, stats.RoleSex}},
		{tokens: []string{"年齢", "男女"}, roles: []stats.Role{stats.RoleArea, stats.RoleAge, stats.RoleSex}},
	}
	householdSignatures = []tableSignature{
		{tokens: []string{"世帯"}, roles: []stats.Role{stats.RoleArea}},
	}
	industrySignatures = []tableSignature{
		{tokens: []string{"産業"}, roles: []stats.Role{stats.RoleArea, stats.RoleIndustry, stats.RoleItem}},
	}
)

// findTable scans the dataset's tables in order against each signature and
// returns the first match with its resolution. No match means the section
// is unavailable and will be zero-filled.
func findTable(tables []models.StatisticalTable, signatures []tableSignature) (*models.StatisticalTable, *stats.Resolution, bool) {
	for _, sig := range signatures {
		for i := range tables {
			table := &tables[i]
			if !titleMatches(table.Title, sig) {
				continue
			}
			res := stats.Resolve(table)
			if !res.HasRoles(sig.roles...) {
				continue
			}
			return table, res, true
		}
	}
	return nil, nil, false
}

func titleMatches(title string, sig tableSignature) bool {
	for _, token := range sig.tokens {
		if !strings.Contains(title, token) {
			return false
		}
	}
	for _, token := range sig.excludes {
		if strings.Contains(title, token) {
			return false
		}
	}
	return true
}

// resolveEntryCode maps a catalog entry onto a dimension's actual code,
// preferring an exact label match over the historical code.
func resolveEntryCode(res *stats.Resolution, dimensionID string, entry catalogEntry) string {
	if code, ok := res.CodeForLabel(dimensionID, entry.Label); ok {
		return code
	}
	return entry.Code
}

// findEntryDimension locates the dimension a catalog's codes live on: the
// first non-area dimension declaring one of the catalog's labels or codes.
func findEntryDimension(table *models.StatisticalTable, res *stats.Resolution, entries []catalogEntry) (string, bool) {
	areaDim, _ := res.DimensionID(stats.RoleArea)
	for _, dim := range table.Classifications {
		if dim.ID == areaDim {
			continue
		}
		for _, c := range dim.Codes {
			for _, entry := range entries {
				if c.Label == entry.Label || c.Code == entry.Code {
					return dim.ID, true
				}
			}
		}
	}
	return "", false
}

// industryDimensions returns every dimension whose name carries the industry
// keyword. Data vintages tag the same industry total under different
// sub-classification dimensions, so extraction tries each of them.
func industryDimensions(table *models.StatisticalTable) []string {
	var ids []string
	for _, dim := range table.Classifications {
		if strings.Contains(dim.Name, stats.Keyword(stats.RoleIndustry)) {
			ids = append(ids, dim.ID)
		}
	}
	return ids
}
