package services

import (
	"context"
	"fmt"

	"tradearea-platform/internal/clients"
	"tradearea-platform/internal/models"
	"tradearea-platform/internal/stats"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// AnalyzeRequest is the dashboard-facing analysis input. Either coordinates
// or a free-form address must be present; the address is geocoded when the
// coordinates are zero.
type AnalyzeRequest struct {
	Address        string             `json:"address,omitempty"`
	Latitude       float64            `json:"latitude,omitempty"`
	Longitude      float64            `json:"longitude,omitempty"`
	Category       string             `json:"category,omitempty"`
	Params         models.RangeParams `json:"range_params"`
	IncludeDataset bool               `json:"include_dataset,omitempty"`
}

// RefdataLookup is the slice of the reference data service the analysis
// needs: resolving the analyzed municipality's income and projection records.
type RefdataLookup interface {
	GetIncome(ctx context.Context, query IncomeQuery) (*models.MunicipalIncome, error)
	GetFuturePopulation(ctx context.Context, query IncomeQuery) (*models.FuturePopulation, error)
}

// AnalysisService orchestrates one trade-area analysis: geocoding, the
// statistics fetch, population aggregation, reference data enrichment and
// the competitor search.
type AnalysisService struct {
	statsClient     clients.StatsClient
	geocodingClient clients.GeocodingClient
	placesClient    clients.PlacesClient
	refdata         RefdataLookup
	aggregator      *stats.Aggregator
	logger          *logging.StructuredLogger
	mc              *metrics.Collector
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	statsClient clients.StatsClient,
	geocodingClient clients.GeocodingClient,
	placesClient clients.PlacesClient,
	refdata RefdataLookup,
	logger *logging.StructuredLogger,
	mc *metrics.Collector,
) *AnalysisService {
	return &AnalysisService{
		statsClient:     statsClient,
		geocodingClient: geocodingClient,
		placesClient:    placesClient,
		refdata:         refdata,
		aggregator:      stats.NewAggregator(logger),
		logger:          logger,
		mc:              mc,
	}
}

// Analyze runs one analysis end to end. The competitor search is best
// effort: its failure degrades the result rather than failing the analysis.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error) {
	lat, lng := req.Latitude, req.Longitude
	address := req.Address

	if lat == 0 && lng == 0 {
		if address == "" {
			return nil, fmt.Errorf("either coordinates or an address is required")
		}
		geo, err := s.geocodingClient.Geocode(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("failed to geocode address: %w", err)
		}
		lat, lng = geo.Latitude, geo.Longitude
		address = geo.FormattedAddress
	}

	s.logger.Info(ctx, "[ANALYZE_START] Starting trade-area analysis", logging.Fields{
		"latitude":   lat,
		"longitude":  lng,
		"range_type": req.Params.RangeType,
		"category":   req.Category,
	})

	dataset, err := s.statsClient.FetchSummary(ctx, clients.StatsQuery{
		Latitude:  lat,
		Longitude: lng,
		Params:    req.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics: %w", err)
	}

	timer := s.mc.NewTimer(s.mc.AggregationDuration)
	population := s.aggregator.Aggregate(ctx, dataset)
	timer.ObserveDuration()
	for _, table := range dataset.Tables {
		s.mc.ObservationsProcessed.Add(float64(len(table.Observations)))
	}

	var competitors []models.Competitor
	if req.Category != "" {
		competitors, err = s.placesClient.SearchCompetitors(ctx, lat, lng, req.Category, req.Params)
		if err != nil {
			s.logger.Warn(ctx, "[ANALYZE_COMPETITORS_FAILED] Competitor search failed, continuing without", logging.Fields{
				"category": req.Category,
			})
			competitors = nil
		}
	}

	result := &models.AnalysisResult{
		BasicInfo: models.BasicInfo{
			Address:   address,
			Latitude:  lat,
			Longitude: lng,
			Category:  req.Category,
			RangeType: req.Params.RangeType,
		},
		Population:  population,
		Competitors: competitors,
	}
	s.enrichFromRefdata(ctx, result, dataset)
	if req.IncludeDataset {
		result.Dataset = dataset
	}

	s.logger.Info(ctx, "[ANALYZE_DONE] Analysis finished", logging.Fields{
		"total_population": population.TotalPopulation,
		"table_count":      len(dataset.Tables),
		"competitor_count": len(competitors),
	})

	return result, nil
}

// enrichFromRefdata attaches the analyzed municipality's income and
// projection records. Best effort: an unknown municipality or a store
// failure leaves the fields nil rather than failing the analysis.
func (s *AnalysisService) enrichFromRefdata(ctx context.Context, result *models.AnalysisResult, dataset *models.StatisticalDataset) {
	if s.refdata == nil || dataset.Position.City == "" {
		return
	}

	query := IncomeQuery{
		MunicipalityName: dataset.Position.City,
		PrefectureName:   dataset.Position.Prefecture,
	}

	income, err := s.refdata.GetIncome(ctx, query)
	if err != nil {
		s.logger.Debug(ctx, "[ANALYZE_REFDATA_MISS] No income record for municipality", logging.Fields{
			"municipality": dataset.Position.City,
		})
	} else {
		result.Income = income
	}

	future, err := s.refdata.GetFuturePopulation(ctx, query)
	if err != nil {
		s.logger.Debug(ctx, "[ANALYZE_REFDATA_MISS] No future population record for municipality", logging.Fields{
			"municipality": dataset.Position.City,
		})
	} else {
		result.FuturePopulation = future
	}
}
