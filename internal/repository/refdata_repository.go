package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tradearea-platform/internal/models"
	"tradearea-platform/pkg/database"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// RefdataRepository provides access to the municipal reference store:
// taxable-income records and future-population projections.
type RefdataRepository interface {
	// Income operations
	ReplaceIncome(ctx context.Context, records []*models.MunicipalIncome) error
	GetIncomeByCode(ctx context.Context, municipalityCode string) (*models.MunicipalIncome, error)
	LookupIncome(ctx context.Context, municipalityName, prefectureName string) (*models.MunicipalIncome, error)
	CountIncome(ctx context.Context) (int, error)

	// Future population operations
	ReplaceFuturePopulation(ctx context.Context, records []*models.FuturePopulation) error
	GetFuturePopulationByCode(ctx context.Context, municipalityCode string) (*models.FuturePopulation, error)
	LookupFuturePopulation(ctx context.Context, municipalityName, prefectureName string) (*models.FuturePopulation, error)
	CountFuturePopulation(ctx context.Context) (int, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// NotFoundError indicates a missing reference record
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// IsTransient returns false as not-found errors are permanent
func (e *NotFoundError) IsTransient() bool {
	return false
}

// refdataRepository implements RefdataRepository
type refdataRepository struct {
	db     *database.SQLiteDB
	logger *logging.StructuredLogger
	mc     *metrics.Collector
}

// NewRefdataRepository creates a new reference data repository and ensures
// its schema exists.
func NewRefdataRepository(db *database.SQLiteDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (RefdataRepository, error) {
	r := &refdataRepository{
		db:     db,
		logger: logger,
		mc:     metricsCollector,
	}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *refdataRepository) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS municipal_income (
			municipality_code TEXT PRIMARY KEY,
			municipality_name TEXT NOT NULL,
			prefecture_name   TEXT NOT NULL,
			data_year         INTEGER NOT NULL,
			taxpayer_count    INTEGER,
			total_income      INTEGER,
			average_income    INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_income_name ON municipal_income (municipality_name);

		CREATE TABLE IF NOT EXISTS future_population (
			municipality_code TEXT PRIMARY KEY,
			municipality_name TEXT NOT NULL,
			prefecture_name   TEXT NOT NULL,
			projections       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_future_name ON future_population (municipality_name);
	`
	if _, err := r.db.ExecContext(ctx, "ensure_schema", schema); err != nil {
		return fmt.Errorf("failed to create reference schema: %w", err)
	}
	return nil
}

// ReplaceIncome swaps the entire income table for a fresh load.
func (r *refdataRepository) ReplaceIncome(ctx context.Context, records []*models.MunicipalIncome) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM municipal_income`); err != nil {
		return fmt.Errorf("failed to clear income table: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO municipal_income
			(municipality_code, municipality_name, prefecture_name, data_year, taxpayer_count, total_income, average_income)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.MunicipalityCode,
			rec.MunicipalityName,
			rec.PrefectureName,
			rec.DataYear,
			rec.TaxpayerCount,
			rec.TotalIncome,
			rec.AverageIncome,
		); err != nil {
			return fmt.Errorf("failed to insert income record %s: %w", rec.MunicipalityCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.mc.SetRefdataRecords("income", len(records))
	r.logger.Info(ctx, "[REFDATA_LOAD] Income records replaced", logging.Fields{
		"record_count": len(records),
	})
	return nil
}

// GetIncomeByCode fetches one income record by municipality code.
func (r *refdataRepository) GetIncomeByCode(ctx context.Context, municipalityCode string) (*models.MunicipalIncome, error) {
	var rec models.MunicipalIncome
	err := r.db.GetContext(ctx, "get_income_by_code", &rec, `
		SELECT municipality_code, municipality_name, prefecture_name, data_year,
		       taxpayer_count, total_income, average_income
		FROM municipal_income
		WHERE municipality_code = ?
	`, municipalityCode)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "municipal income", Key: municipalityCode}
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LookupIncome resolves a record by place name: exact municipality name
// first, then prefecture-qualified, then a partial match. Municipality names
// repeat across prefectures, so the qualified form wins over partials.
func (r *refdataRepository) LookupIncome(ctx context.Context, municipalityName, prefectureName string) (*models.MunicipalIncome, error) {
	const columns = `
		SELECT municipality_code, municipality_name, prefecture_name, data_year,
		       taxpayer_count, total_income, average_income
		FROM municipal_income
	`

	var rec models.MunicipalIncome

	err := r.db.GetContext(ctx, "lookup_income_exact", &rec,
		columns+`WHERE municipality_name = ? LIMIT 1`, municipalityName)
	if err == nil {
		return &rec, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	if prefectureName != "" {
		err = r.db.GetContext(ctx, "lookup_income_qualified", &rec,
			columns+`WHERE prefecture_name = ? AND municipality_name LIKE ? LIMIT 1`,
			prefectureName, municipalityName+"%")
		if err == nil {
			return &rec, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	err = r.db.GetContext(ctx, "lookup_income_partial", &rec,
		columns+`WHERE municipality_name LIKE ? LIMIT 1`, "%"+municipalityName+"%")
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "municipal income", Key: municipalityName}
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountIncome returns the number of loaded income records.
func (r *refdataRepository) CountIncome(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, "count_income", &count, `SELECT COUNT(*) FROM municipal_income`)
	return count, err
}

// futurePopulationRow is the storage shape; projections serialize as JSON.
type futurePopulationRow struct {
	MunicipalityCode string `db:"municipality_code"`
	MunicipalityName string `db:"municipality_name"`
	PrefectureName   string `db:"prefecture_name"`
	Projections      string `db:"projections"`
}

func (row *futurePopulationRow) toModel() (*models.FuturePopulation, error) {
	rec := &models.FuturePopulation{
		MunicipalityCode: row.MunicipalityCode,
		MunicipalityName: row.MunicipalityName,
		PrefectureName:   row.PrefectureName,
	}
	if err := json.Unmarshal([]byte(row.Projections), &rec.Projections); err != nil {
		return nil, fmt.Errorf("failed to decode projections for %s: %w", row.MunicipalityCode, err)
	}
	return rec, nil
}

// ReplaceFuturePopulation swaps the entire projection table for a fresh load.
func (r *refdataRepository) ReplaceFuturePopulation(ctx context.Context, records []*models.FuturePopulation) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM future_population`); err != nil {
		return fmt.Errorf("failed to clear future population table: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO future_population (municipality_code, municipality_name, prefecture_name, projections)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		projections, err := json.Marshal(rec.Projections)
		if err != nil {
			return fmt.Errorf("failed to encode projections for %s: %w", rec.MunicipalityCode, err)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.MunicipalityCode,
			rec.MunicipalityName,
			rec.PrefectureName,
			string(projections),
		); err != nil {
			return fmt.Errorf("failed to insert projection record %s: %w", rec.MunicipalityCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.mc.SetRefdataRecords("future_population", len(records))
	r.logger.Info(ctx, "[REFDATA_LOAD] Future population records replaced", logging.Fields{
		"record_count": len(records),
	})
	return nil
}

// GetFuturePopulationByCode fetches one projection record by municipality code.
func (r *refdataRepository) GetFuturePopulationByCode(ctx context.Context, municipalityCode string) (*models.FuturePopulation, error) {
	var row futurePopulationRow
	err := r.db.GetContext(ctx, "get_future_by_code", &row, `
		SELECT municipality_code, municipality_name, prefecture_name, projections
		FROM future_population
		WHERE municipality_code = ?
	`, municipalityCode)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "future population", Key: municipalityCode}
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// LookupFuturePopulation resolves a projection record by place name with the
// same chain as LookupIncome.
func (r *refdataRepository) LookupFuturePopulation(ctx context.Context, municipalityName, prefectureName string) (*models.FuturePopulation, error) {
	const columns = `
		SELECT municipality_code, municipality_name, prefecture_name, projections
		FROM future_population
	`

	var row futurePopulationRow

	err := r.db.GetContext(ctx, "lookup_future_exact", &row,
		columns+`WHERE municipality_name = ? LIMIT 1`, municipalityName)
	if err == nil {
		return row.toModel()
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	if prefectureName != "" {
		err = r.db.GetContext(ctx, "lookup_future_qualified", &row,
			columns+`WHERE prefecture_name = ? AND municipality_name LIKE ? LIMIT 1`,
			prefectureName, municipalityName+"%")
		if err == nil {
			return row.toModel()
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	err = r.db.GetContext(ctx, "lookup_future_partial", &row,
		columns+`WHERE municipality_name LIKE ? LIMIT 1`, "%"+municipalityName+"%")
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "future population", Key: municipalityName}
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// CountFuturePopulation returns the number of loaded projection records.
func (r *refdataRepository) CountFuturePopulation(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, "count_future", &count, `SELECT COUNT(*) FROM future_population`)
	return count, err
}

// HealthCheck verifies the reference store is reachable.
func (r *refdataRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
