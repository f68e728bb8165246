package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tradearea-platform/internal/config"
	"tradearea-platform/internal/repository"
	"tradearea-platform/internal/services"
	"tradearea-platform/pkg/database"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// refdata loads the municipal reference sources into the local store and
// prints the resulting record counts.
func main() {
	incomeCSV := flag.String("income-csv", "", "Path to the municipal taxable income CSV (overrides config)")
	futurePopulation := flag.String("future-population", "", "Path to the future population JSON (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *incomeCSV != "" {
		cfg.Refdata.IncomeCSVPath = *incomeCSV
	}
	if *futurePopulation != "" {
		cfg.Refdata.FuturePopulationPath = *futurePopulation
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("tradearea-refdata", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[REFDATA_START] Loading reference data", logging.Fields{
		"version":           "1.0.0",
		"store_path":        cfg.Refdata.StorePath,
		"income_csv":        cfg.Refdata.IncomeCSVPath,
		"future_population": cfg.Refdata.FuturePopulationPath,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("tradearea_refdata")

	// Initialize reference data store
	db, err := database.NewSQLiteDB(&database.Config{
		Path:         cfg.Refdata.StorePath,
		MaxOpenConns: 1,
	}, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[REFDATA_ERROR] Failed to open reference store", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and service
	refdataRepo, err := repository.NewRefdataRepository(db, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[REFDATA_ERROR] Failed to prepare reference store", logging.Fields{}, err)
	}
	refdataService := services.NewRefdataService(refdataRepo, logger, metricsCollector)

	// Load the configured sources
	if err := refdataService.LoadFromFiles(ctx, cfg.Refdata); err != nil {
		logger.Fatal(ctx, "[REFDATA_ERROR] Load failed", logging.Fields{}, err)
	}

	incomeCount, futureCount, err := refdataService.Counts(ctx)
	if err != nil {
		logger.Fatal(ctx, "[REFDATA_ERROR] Count query failed", logging.Fields{}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("REFERENCE DATA LOAD COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Store Path:                %s\n", cfg.Refdata.StorePath)
	fmt.Printf("Income Records:            %d\n", incomeCount)
	fmt.Printf("Future Population Records: %d\n", futureCount)

	logger.Info(ctx, "[REFDATA_COMPLETE] Reference data loaded", logging.Fields{
		"income_records": incomeCount,
		"future_records": futureCount,
	})
}
