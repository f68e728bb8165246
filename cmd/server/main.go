package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradearea-platform/internal/clients"
	"tradearea-platform/internal/config"
	"tradearea-platform/internal/handlers"
	"tradearea-platform/internal/middleware"
	"tradearea-platform/internal/repository"
	"tradearea-platform/internal/services"
	"tradearea-platform/pkg/database"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("tradearea-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting trade-area platform API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"store_path":  cfg.Refdata.StorePath,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("tradearea_platform")

	// Initialize reference data store
	db, err := database.NewSQLiteDB(&database.Config{
		Path:         cfg.Refdata.StorePath,
		MaxOpenConns: 4,
	}, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to open reference store", logging.Fields{}, err)
	}
	defer db.Close()

	refdataRepo, err := repository.NewRefdataRepository(db, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to prepare reference store", logging.Fields{}, err)
	}

	// Initialize upstream provider clients
	statsClient := clients.NewStatsClient(
		cfg.Providers.Stats.BaseURL,
		cfg.Providers.Stats.APIKey,
		cfg.Providers.Stats.Timeout,
		logger, metricsCollector,
	)
	geocodingClient := clients.NewGeocodingClient(
		cfg.Providers.Geocoding.BaseURL,
		cfg.Providers.Geocoding.APIKey,
		cfg.Providers.Geocoding.Timeout,
		logger, metricsCollector,
	)
	placesClient := clients.NewPlacesClient(
		cfg.Providers.Places.BaseURL,
		cfg.Providers.Places.APIKey,
		cfg.Providers.Places.Timeout,
		logger, metricsCollector,
	)

	// Initialize services
	refdataService := services.NewRefdataService(refdataRepo, logger, metricsCollector)
	analysisService := services.NewAnalysisService(statsClient, geocodingClient, placesClient, refdataService, logger, metricsCollector)
	reportService := services.NewReportService(logger, metricsCollector)

	// Load reference data sources configured for startup
	if err := refdataService.LoadFromFiles(ctx, cfg.Refdata); err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load reference data", logging.Fields{}, err)
	}

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService, reportService, refdataService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogging(logger, metricsCollector))

	// Register routes
	analysisHandler.RegisterRoutes(router)

	// API documentation
	router.HandleFunc("/api/docs/openapi.json", handlers.OpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", handlers.SwaggerUI).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
