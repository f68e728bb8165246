package services

import (
	"context"
	"fmt"
	"os"

	"tradearea-platform/internal/config"
	"tradearea-platform/internal/models"
	"tradearea-platform/internal/refdata"
	"tradearea-platform/internal/repository"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// RefdataService loads and serves the municipal reference data: taxable
// income and future-population projections.
type RefdataService struct {
	repo   repository.RefdataRepository
	logger *logging.StructuredLogger
	mc     *metrics.Collector
}

// NewRefdataService creates a new reference data service.
func NewRefdataService(repo repository.RefdataRepository, logger *logging.StructuredLogger, mc *metrics.Collector) *RefdataService {
	return &RefdataService{
		repo:   repo,
		logger: logger,
		mc:     mc,
	}
}

// LoadFromFiles performs the one-time startup load of the configured source
// files into the store. Sources left unconfigured are skipped.
func (s *RefdataService) LoadFromFiles(ctx context.Context, cfg config.RefdataConfig) error {
	if cfg.IncomeCSVPath != "" {
		f, err := os.Open(cfg.IncomeCSVPath)
		if err != nil {
			return fmt.Errorf("failed to open income CSV: %w", err)
		}
		records, err := refdata.ParseIncomeCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse income CSV: %w", err)
		}
		if err := s.repo.ReplaceIncome(ctx, records); err != nil {
			return fmt.Errorf("failed to store income records: %w", err)
		}
	} else {
		s.logger.Warn(ctx, "[REFDATA_SKIP] No income CSV configured", nil)
	}

	if cfg.FuturePopulationPath != "" {
		f, err := os.Open(cfg.FuturePopulationPath)
		if err != nil {
			return fmt.Errorf("failed to open future population file: %w", err)
		}
		records, err := refdata.ParseFuturePopulationJSON(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse future population file: %w", err)
		}
		if err := s.repo.ReplaceFuturePopulation(ctx, records); err != nil {
			return fmt.Errorf("failed to store future population records: %w", err)
		}
	} else {
		s.logger.Warn(ctx, "[REFDATA_SKIP] No future population file configured", nil)
	}

	return nil
}

// IncomeQuery identifies a municipality by code or by name.
type IncomeQuery struct {
	MunicipalityCode string `json:"municipality_code,omitempty"`
	MunicipalityName string `json:"municipality_name,omitempty"`
	PrefectureName   string `json:"prefecture_name,omitempty"`
}

// GetIncome resolves one income record, preferring the code when given.
func (s *RefdataService) GetIncome(ctx context.Context, query IncomeQuery) (*models.MunicipalIncome, error) {
	if query.MunicipalityCode != "" {
		return s.repo.GetIncomeByCode(ctx, query.MunicipalityCode)
	}
	if query.MunicipalityName == "" {
		return nil, fmt.Errorf("either municipality code or name is required")
	}
	return s.repo.LookupIncome(ctx, query.MunicipalityName, query.PrefectureName)
}

// GetFuturePopulation resolves one projection record, preferring the code
// when given.
func (s *RefdataService) GetFuturePopulation(ctx context.Context, query IncomeQuery) (*models.FuturePopulation, error) {
	if query.MunicipalityCode != "" {
		return s.repo.GetFuturePopulationByCode(ctx, query.MunicipalityCode)
	}
	if query.MunicipalityName == "" {
		return nil, fmt.Errorf("either municipality code or name is required")
	}
	return s.repo.LookupFuturePopulation(ctx, query.MunicipalityName, query.PrefectureName)
}

// Counts returns the loaded record counts per kind.
func (s *RefdataService) Counts(ctx context.Context) (incomeCount, futureCount int, err error) {
	incomeCount, err = s.repo.CountIncome(ctx)
	if err != nil {
		return 0, 0, err
	}
	futureCount, err = s.repo.CountFuturePopulation(ctx)
	if err != nil {
		return 0, 0, err
	}
	return incomeCount, futureCount, nil
}

// HealthCheck verifies the reference store is reachable.
func (s *RefdataService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
