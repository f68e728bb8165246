package services

import (
	"context"
	"io"
	"testing"

	"tradearea-platform/internal/clients"
	"tradearea-platform/internal/models"
	"tradearea-platform/internal/repository"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

var analysisTestCollector = metrics.NewCollector("services_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("services-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

type stubStatsClient struct {
	dataset *models.StatisticalDataset
}

func (s *stubStatsClient) FetchSummary(ctx context.Context, query clients.StatsQuery) (*models.StatisticalDataset, error) {
	return s.dataset, nil
}

type stubGeocodingClient struct{}

func (s *stubGeocodingClient) Geocode(ctx context.Context, address string) (*clients.GeocodeResult, error) {
	return &clients.GeocodeResult{Latitude: 35.68, Longitude: 139.76, FormattedAddress: address}, nil
}

type stubPlacesClient struct{}

func (s *stubPlacesClient) SearchCompetitors(ctx context.Context, lat, lng float64, keyword string, params models.RangeParams) ([]models.Competitor, error) {
	return nil, nil
}

type stubRefdataLookup struct {
	income *models.MunicipalIncome
	future *models.FuturePopulation
}

func (s *stubRefdataLookup) GetIncome(ctx context.Context, query IncomeQuery) (*models.MunicipalIncome, error) {
	if s.income == nil {
		return nil, &repository.NotFoundError{Resource: "municipal_income", Key: query.MunicipalityName}
	}
	return s.income, nil
}

func (s *stubRefdataLookup) GetFuturePopulation(ctx context.Context, query IncomeQuery) (*models.FuturePopulation, error) {
	if s.future == nil {
		return nil, &repository.NotFoundError{Resource: "future_population", Key: query.MunicipalityName}
	}
	return s.future, nil
}

func testDataset() *models.StatisticalDataset {
	return &models.StatisticalDataset{
		Position: models.Position{Prefecture: "東京都", City: "千代田区"},
	}
}

func newTestAnalysisService(refdata RefdataLookup, dataset *models.StatisticalDataset) *AnalysisService {
	return NewAnalysisService(
		&stubStatsClient{dataset: dataset},
		&stubGeocodingClient{},
		&stubPlacesClient{},
		refdata,
		testLogger(),
		analysisTestCollector,
	)
}

func TestAnalyzeEnrichesFromRefdata(t *testing.T) {
	avg := int64(12500)
	refdata := &stubRefdataLookup{
		income: &models.MunicipalIncome{
			MunicipalityCode: "131016",
			MunicipalityName: "千代田区",
			AverageIncome:    &avg,
		},
		future: &models.FuturePopulation{
			MunicipalityCode: "131016",
			MunicipalityName: "千代田区",
			Projections:      map[string]int{"2030": 69000},
		},
	}
	svc := newTestAnalysisService(refdata, testDataset())

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Latitude:  35.68,
		Longitude: 139.76,
		Params:    models.RangeParams{RangeType: models.RangeTypeCircle},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Income == nil || result.Income.MunicipalityCode != "131016" {
		t.Errorf("Income = %+v, want record for 131016", result.Income)
	}
	if result.FuturePopulation == nil || result.FuturePopulation.Projections["2030"] != 69000 {
		t.Errorf("FuturePopulation = %+v, want 2030 projection 69000", result.FuturePopulation)
	}
}

func TestAnalyzeRefdataMissIsNotFatal(t *testing.T) {
	svc := newTestAnalysisService(&stubRefdataLookup{}, testDataset())

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Latitude:  35.68,
		Longitude: 139.76,
		Params:    models.RangeParams{RangeType: models.RangeTypeCircle},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Income != nil || result.FuturePopulation != nil {
		t.Errorf("unknown municipality must leave enrichment nil, got income=%+v future=%+v",
			result.Income, result.FuturePopulation)
	}
}

func TestAnalyzeWithoutResolvedCitySkipsEnrichment(t *testing.T) {
	avg := int64(1)
	refdata := &stubRefdataLookup{income: &models.MunicipalIncome{AverageIncome: &avg}}
	svc := newTestAnalysisService(refdata, &models.StatisticalDataset{})

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Latitude:  35.68,
		Longitude: 139.76,
		Params:    models.RangeParams{RangeType: models.RangeTypeCircle},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Income != nil {
		t.Errorf("no resolved city: Income = %+v, want nil", result.Income)
	}
}
