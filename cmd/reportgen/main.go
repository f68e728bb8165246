package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"tradearea-platform/internal/export"
	"tradearea-platform/internal/models"
	"tradearea-platform/internal/report"
	"tradearea-platform/internal/stats"
	"tradearea-platform/pkg/logging"
)

// reportgen builds a report workbook or CSV offline from a captured
// statistics payload, without the HTTP server or any upstream provider.
func main() {
	payloadPath := flag.String("payload", "", "Path to a captured statistics JSON payload")
	outputPath := flag.String("output", "report.xlsx", "Output file path (.xlsx or .csv)")
	format := flag.String("format", "xlsx", "Output format: xlsx or csv")
	address := flag.String("address", "", "Analyzed address for the basic info sheet")
	category := flag.String("category", "", "Facility category for the basic info sheet")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	if *payloadPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: reportgen -payload <file.json> [-output report.xlsx] [-format xlsx|csv]")
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("tradearea-reportgen", "1.0.0", logging.ParseLevel(*logLevel))
	ctx := context.Background()

	data, err := os.ReadFile(*payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read payload: %v\n", err)
		os.Exit(1)
	}

	dataset, err := models.DecodeDataset(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode payload: %v\n", err)
		os.Exit(1)
	}

	aggregator := stats.NewAggregator(logger)
	population := aggregator.Aggregate(ctx, dataset)

	rangeType := models.RangeTypeCircle
	if dataset.Parameter.RangeType == models.RangeTypeDriveTime {
		rangeType = models.RangeTypeDriveTime
	}
	lat, _ := strconv.ParseFloat(dataset.Parameter.Latitude, 64)
	lng, _ := strconv.ParseFloat(dataset.Parameter.Longitude, 64)

	req := &models.ExportRequest{
		BasicInfo: models.BasicInfo{
			Address:   *address,
			Latitude:  lat,
			Longitude: lng,
			Category:  *category,
			RangeType: rangeType,
		},
		Run: &models.AnalysisRun{
			RangeParams: models.RangeParams{RangeType: rangeType},
			Population:  population,
			Dataset:     dataset,
		},
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	builder := report.NewBuilder(logger)
	switch *format {
	case "xlsx":
		sheets := builder.BuildReport(ctx, req.BasicInfo, req.Run, "")
		if err := export.WriteWorkbook(out, sheets); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render workbook: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d sheets to %s\n", len(sheets), *outputPath)
	case "csv":
		if err := export.WriteCSV(out, req); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote CSV to %s\n", *outputPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *format)
		os.Exit(1)
	}

	fmt.Printf("Tables:           %d\n", len(dataset.Tables))
	fmt.Printf("Total Population: %d\n", population.TotalPopulation)
}
