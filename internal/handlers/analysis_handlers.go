package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"tradearea-platform/internal/clients"
	"tradearea-platform/internal/export"
	"tradearea-platform/internal/models"
	"tradearea-platform/internal/repository"
	"tradearea-platform/internal/services"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// maxRequestBody caps analysis payloads; captured datasets run to a few MB.
const maxRequestBody = 32 << 20

// AnalysisHandler handles the trade-area analysis API endpoints
type AnalysisHandler struct {
	analysisService *services.AnalysisService
	reportService   *services.ReportService
	refdataService  *services.RefdataService
	logger          *logging.StructuredLogger
	metrics         *metrics.Collector
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	analysisService *services.AnalysisService,
	reportService *services.ReportService,
	refdataService *services.RefdataService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		reportService:   reportService,
		refdataService:  refdataService,
		logger:          logger,
		metrics:         metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Analyze handles POST /api/stats
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/stats").Observe(time.Since(startTime).Seconds())
	}()

	var req services.AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.analysisService.Analyze(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, "/api/stats", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/stats", r.Method, "200")
	h.sendJSON(w, result, http.StatusOK)
}

// ExportReport handles POST /api/export/report
func (h *AnalysisHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/export/report").Observe(time.Since(startTime).Seconds())
	}()

	var req models.ExportRequest
	if err := decodeBody(r, &req); err != nil {
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	artifact, err := h.reportService.GenerateWorkbook(ctx, &req)
	if err != nil {
		h.handleServiceError(w, r, "/api/export/report", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/export/report", r.Method, "200")
	h.sendArtifact(w, artifact)
}

// ExportCSV handles POST /api/export/csv
func (h *AnalysisHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/export/csv").Observe(time.Since(startTime).Seconds())
	}()

	var req models.ExportRequest
	if err := decodeBody(r, &req); err != nil {
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	artifact, err := h.reportService.GenerateCSV(ctx, &req)
	if err != nil {
		h.handleServiceError(w, r, "/api/export/csv", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/export/csv", r.Method, "200")
	h.sendArtifact(w, artifact)
}

// GetIncome handles POST /api/income
func (h *AnalysisHandler) GetIncome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/income").Observe(time.Since(startTime).Seconds())
	}()

	var query services.IncomeQuery
	if err := decodeBody(r, &query); err != nil {
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.refdataService.GetIncome(ctx, query)
	if err != nil {
		h.handleServiceError(w, r, "/api/income", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/income", r.Method, "200")
	h.sendJSON(w, record, http.StatusOK)
}

// GetFuturePopulation handles POST /api/future-population
func (h *AnalysisHandler) GetFuturePopulation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/future-population").Observe(time.Since(startTime).Seconds())
	}()

	var query services.IncomeQuery
	if err := decodeBody(r, &query); err != nil {
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.refdataService.GetFuturePopulation(ctx, query)
	if err != nil {
		h.handleServiceError(w, r, "/api/future-population", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/future-population", r.Method, "200")
	h.sendJSON(w, record, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AnalysisHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.refdataService.HealthCheck(ctx); err != nil {
		status["status"] = "degraded"
		status["refdata"] = err.Error()
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// handleServiceError maps service-layer failures onto response codes.
func (h *AnalysisHandler) handleServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var notFound *repository.NotFoundError
	var upstream *clients.UpstreamError
	var validation *models.ValidationError

	switch {
	case errors.As(err, &notFound):
		h.metrics.RecordAPIError("not_found", endpoint)
		h.sendError(w, r, err.Error(), http.StatusNotFound)
	case errors.As(err, &upstream):
		h.metrics.RecordAPIError("upstream", endpoint)
		h.logger.Error(r.Context(), "[API_UPSTREAM_ERROR] Upstream failure", logging.Fields{
			"endpoint": endpoint,
			"provider": upstream.Provider,
		}, err)
		h.sendError(w, r, "upstream provider unavailable", http.StatusBadGateway)
	case errors.As(err, &validation):
		h.metrics.RecordAPIError("validation", endpoint)
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
	default:
		h.metrics.RecordAPIError("internal", endpoint)
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.sendError(w, r, "request failed", http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody)).Decode(dst)
}

// sendArtifact streams a rendered download with its filename headers.
func (h *AnalysisHandler) sendArtifact(w http.ResponseWriter, artifact *services.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", export.EncodeFileName(artifact.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

// sendJSON sends a JSON response
func (h *AnalysisHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AnalysisHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all analysis API routes
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/stats", h.Analyze).Methods("POST")
	router.HandleFunc("/api/export/report", h.ExportReport).Methods("POST")
	router.HandleFunc("/api/export/csv", h.ExportCSV).Methods("POST")
	router.HandleFunc("/api/income", h.GetIncome).Methods("POST")
	router.HandleFunc("/api/future-population", h.GetFuturePopulation).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
