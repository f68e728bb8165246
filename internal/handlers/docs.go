package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Trade Area Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	jsonBody := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"description": description,
			"required":    true,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]string{"type": "object"},
				},
			},
		}
	}
	jsonResponse := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"200": map[string]interface{}{
				"description": description,
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{
						"schema": map[string]string{"type": "object"},
					},
				},
			},
		}
	}
	fileResponse := func(description, contentType string) map[string]interface{} {
		return map[string]interface{}{
			"200": map[string]interface{}{
				"description": description,
				"content": map[string]interface{}{
					contentType: map[string]interface{}{
						"schema": map[string]string{"type": "string", "format": "binary"},
					},
				},
			},
		}
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Trade Area Platform API",
			"description": "Trade-area analysis platform: area-aggregated statistics, population summaries, competitor search, and report exports",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Trade Area Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/stats": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Run a trade-area analysis",
					"description": "Fetches area-aggregated statistics for a point or address, aggregates the population summary, and optionally searches competitors",
					"requestBody": jsonBody("Analysis request: coordinates or address, range parameters, optional facility category"),
					"responses":   jsonResponse("Analysis result with population summary, competitors, and optional raw dataset"),
				},
			},
			"/api/export/report": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Export an analysis as an Excel workbook",
					"description": "Renders the full multi-sheet report for one run, or the dual-mode report when both runs are present",
					"requestBody": jsonBody("Export request: basic info plus one analysis run, or circle and drive-time runs for dual mode"),
					"responses": fileResponse("Workbook download with Content-Disposition filename",
						"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
				},
			},
			"/api/export/csv": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Export an analysis as CSV",
					"description": "Renders the population summary, industries, and competitors as BOM-prefixed CSV",
					"requestBody": jsonBody("Export request, same shape as the workbook export"),
					"responses":   fileResponse("CSV download", "text/csv"),
				},
			},
			"/api/income": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Look up municipal taxable income",
					"description": "Resolves a municipality by code or by name (exact, prefecture-qualified, then partial match)",
					"requestBody": jsonBody("Municipality code, or name with optional prefecture"),
					"responses":   jsonResponse("Municipal income record"),
				},
			},
			"/api/future-population": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Look up future population projections",
					"description": "Resolves a municipality by code or by name and returns its year-by-year projections",
					"requestBody": jsonBody("Municipality code, or name with optional prefecture"),
					"responses":   jsonResponse("Future population record"),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API and the reference store are available",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
