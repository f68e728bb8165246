package stats

import (
	"context"
	"strings"

	"tradearea-platform/internal/models"
	"tradearea-platform/pkg/logging"
)

// Aggregator walks every table of a dataset and accumulates the normalized
// population summary consumed by the dashboard.
type Aggregator struct {
	logger *logging.StructuredLogger
}

// NewAggregator creates a new population aggregator.
func NewAggregator(logger *logging.StructuredLogger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate produces the population summary for one dataset. It is a pure
// function of its input: an empty or failed dataset yields a zeroed summary,
// a table missing an expected role is skipped with a diagnostic, and no
// malformed-but-well-typed input makes it fail.
func (a *Aggregator) Aggregate(ctx context.Context, dataset *models.StatisticalDataset) *models.PopulationSummary {
	summary := models.NewPopulationSummary()
	if dataset == nil || len(dataset.Tables) == 0 {
		return summary
	}

	for i := range dataset.Tables {
		table := &dataset.Tables[i]

		if strings.Contains(table.Title, TitleTokenAge) && strings.Contains(table.Title, TitleTokenSex) {
			a.aggregateAgeBySex(ctx, table, summary)
		}

		if strings.Contains(table.Title, TitleTokenIndustry) {
			a.aggregateIndustry(ctx, table, summary)
		}
	}

	return summary
}

// aggregateAgeBySex accumulates one age×sex table into the summary. The
// grand total is only incremented from the both-sexes rows to avoid double
// counting.
func (a *Aggregator) aggregateAgeBySex(ctx context.Context, table *models.StatisticalTable, summary *models.PopulationSummary) {
	res := Resolve(table)
	if !res.HasRoles(RoleArea, RoleAge, RoleSex) {
		a.logger.Debug(ctx, "[AGG_SKIP_TABLE] Age table missing expected roles", logging.Fields{
			"table_title": table.Title,
		})
		return
	}

	areaDim, _ := res.DimensionID(RoleArea)
	ageDim, _ := res.DimensionID(RoleAge)
	sexDim, _ := res.DimensionID(RoleSex)

	for i := range table.Observations {
		obs := &table.Observations[i]

		if _, ok := obs.Tags[areaDim]; !ok {
			continue
		}
		ageCode, ok := obs.Tags[ageDim]
		if !ok {
			continue
		}
		sexCode, ok := obs.Tags[sexDim]
		if !ok {
			continue
		}

		// Unrecognized codes are skipped rather than turned into buckets.
		ageLabel, ok := res.LabelStrict(ageDim, ageCode)
		if !ok {
			continue
		}
		sexLabel, ok := res.LabelStrict(sexDim, sexCode)
		if !ok {
			continue
		}

		val := int(NumericValue(obs))

		group, ok := summary.AgeGroups[ageLabel]
		if !ok {
			group = &models.AgeGroupCounts{}
			summary.AgeGroups[ageLabel] = group
		}

		switch sexLabel {
		case LabelBothSexes:
			group.Total += val
			summary.TotalPopulation += val
		case LabelMale:
			group.Male += val
		case LabelFemale:
			group.Female += val
		}
	}
}

// aggregateIndustry accumulates one industry table into the summary,
// splitting by establishment-count and employee-count items.
func (a *Aggregator) aggregateIndustry(ctx context.Context, table *models.StatisticalTable, summary *models.PopulationSummary) {
	res := Resolve(table)
	if !res.HasRoles(RoleArea, RoleIndustry, RoleItem) {
		a.logger.Debug(ctx, "[AGG_SKIP_TABLE] Industry table missing expected roles", logging.Fields{
			"table_title": table.Title,
		})
		return
	}

	industryDim, _ := res.DimensionID(RoleIndustry)
	itemDim, _ := res.DimensionID(RoleItem)

	for i := range table.Observations {
		obs := &table.Observations[i]

		industryCode, ok := obs.Tags[industryDim]
		if !ok {
			continue
		}
		itemCode, ok := obs.Tags[itemDim]
		if !ok {
			continue
		}

		industryLabel, ok := res.LabelStrict(industryDim, industryCode)
		if !ok {
			continue
		}
		itemLabel, ok := res.LabelStrict(itemDim, itemCode)
		if !ok {
			continue
		}

		val := int(NumericValue(obs))

		counts, ok := summary.Industries[industryLabel]
		if !ok {
			counts = &models.IndustryCounts{}
			summary.Industries[industryLabel] = counts
		}

		switch {
		case strings.Contains(itemLabel, ItemTokenEstablishments):
			counts.Establishments += val
		case strings.Contains(itemLabel, ItemTokenEmployees):
			counts.Employees += val
		}
	}
}
