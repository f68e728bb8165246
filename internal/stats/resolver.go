package stats

import (
	"strings"

	"tradearea-platform/internal/models"
)

// Resolution holds the role map and the code→label tables for one
// statistical table. Built once per table, then used for every observation.
type Resolution struct {
	roles  map[Role]string
	labels map[string]map[string]string
	names  map[string]string
}

// Resolve inspects a table's classification metadata and detects which
// dimension plays which semantic role by substring-matching dimension names
// against the keyword table. A table may match zero or several roles;
// callers treat an absent role as "this table does not carry that axis".
func Resolve(table *models.StatisticalTable) *Resolution {
	r := &Resolution{
		roles:  make(map[Role]string),
		labels: make(map[string]map[string]string),
		names:  make(map[string]string),
	}
	if table == nil {
		return r
	}

	for _, dim := range table.Classifications {
		for role, keyword := range roleKeywords {
			if _, taken := r.roles[role]; taken {
				continue
			}
			if strings.Contains(dim.Name, keyword) {
				r.roles[role] = dim.ID
			}
		}

		codeMap := make(map[string]string, len(dim.Codes))
		for _, c := range dim.Codes {
			codeMap[c.Code] = c.Label
		}
		r.labels[dim.ID] = codeMap
		r.names[dim.ID] = dim.Name
	}

	return r
}

// DimensionID returns the dimension detected for a role.
func (r *Resolution) DimensionID(role Role) (string, bool) {
	id, ok := r.roles[role]
	return id, ok
}

// HasRoles reports whether every given role was detected.
func (r *Resolution) HasRoles(roles ...Role) bool {
	for _, role := range roles {
		if _, ok := r.roles[role]; !ok {
			return false
		}
	}
	return true
}

// Label resolves a (dimension, code) pair to its declared label. A code
// without a declared label resolves to the raw code unchanged; this is
// graceful degradation, not an error.
func (r *Resolution) Label(dimensionID, code string) string {
	if codeMap, ok := r.labels[dimensionID]; ok {
		if label, ok := codeMap[code]; ok {
			return label
		}
	}
	return code
}

// LabelStrict resolves a (dimension, code) pair, reporting whether the code
// was actually declared. The aggregator uses this to skip observations with
// unrecognized codes instead of fabricating buckets for them.
func (r *Resolution) LabelStrict(dimensionID, code string) (string, bool) {
	codeMap, ok := r.labels[dimensionID]
	if !ok {
		return "", false
	}
	label, ok := codeMap[code]
	return label, ok
}

// CodeForLabel searches a dimension's declared codes for an exact label
// match. Used when a report catalog names an entry by label and the code
// varies across data vintages.
func (r *Resolution) CodeForLabel(dimensionID, label string) (string, bool) {
	for code, l := range r.labels[dimensionID] {
		if l == label {
			return code, true
		}
	}
	return "", false
}

// CodeForLabelToken searches a dimension's declared codes for a label
// containing the given token.
func (r *Resolution) CodeForLabelToken(dimensionID, token string) (string, bool) {
	for code, l := range r.labels[dimensionID] {
		if strings.Contains(l, token) {
			return code, true
		}
	}
	return "", false
}

// DimensionName returns the declared name of a dimension.
func (r *Resolution) DimensionName(dimensionID string) string {
	return r.names[dimensionID]
}
