package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"tradearea-platform/internal/models"
	"tradearea-platform/internal/spatial"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// PlacesClient searches competitor facilities around the analysis point.
type PlacesClient interface {
	SearchCompetitors(ctx context.Context, lat, lng float64, keyword string, params models.RangeParams) ([]models.Competitor, error)
}

type placesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.StructuredLogger
	mc         *metrics.Collector
}

// NewPlacesClient creates a place search provider client.
func NewPlacesClient(baseURL, apiKey string, timeout time.Duration, logger *logging.StructuredLogger, mc *metrics.Collector) PlacesClient {
	return &placesClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
		mc:         mc,
	}
}

// placesResponse mirrors the provider's nearby-search envelope.
type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		PlaceID  string `json:"place_id"`
		Rating   float64 `json:"rating"`
		Ratings  int     `json:"user_ratings_total"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// SearchCompetitors finds facilities matching the keyword within the run's
// outermost tier radius, sorted by distance. Each hit gets its distance from
// the center, a tier assignment, and a map link.
func (c *placesClient) SearchCompetitors(ctx context.Context, lat, lng float64, keyword string, params models.RangeParams) ([]models.Competitor, error) {
	timer := c.mc.NewTimer(c.mc.UpstreamRequestDuration.WithLabelValues(ProviderPlaces))
	defer timer.ObserveDuration()

	r1, r2, r3 := spatial.TierRadii(params)

	values := url.Values{}
	values.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	values.Set("radius", strconv.Itoa(r3))
	values.Set("keyword", keyword)
	values.Set("language", "ja")
	if c.apiKey != "" {
		values.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.mc.RecordUpstreamError(ProviderPlaces, "transport")
		return nil, &UpstreamError{Provider: ProviderPlaces, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.mc.RecordUpstreamError(ProviderPlaces, "http_status")
		return nil, &UpstreamError{
			Provider:   ProviderPlaces,
			StatusCode: resp.StatusCode,
			Message:    "unexpected response status",
		}
	}

	var payload placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.mc.RecordUpstreamError(ProviderPlaces, "decode")
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	// ZERO_RESULTS is a valid empty answer, not a failure.
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		c.mc.RecordUpstreamError(ProviderPlaces, "provider_status")
		return nil, &UpstreamError{
			Provider: ProviderPlaces,
			Message:  fmt.Sprintf("search failed with status %s", payload.Status),
		}
	}

	competitors := make([]models.Competitor, 0, len(payload.Results))
	for _, place := range payload.Results {
		distance := spatial.DistanceMeters(lat, lng, place.Geometry.Location.Lat, place.Geometry.Location.Lng)
		tier := spatial.ClassifyTier(distance, r1, r2, r3)
		if tier == 0 {
			continue
		}
		competitors = append(competitors, models.Competitor{
			Name:        place.Name,
			Address:     place.Vicinity,
			DistanceM:   distance,
			Rating:      place.Rating,
			ReviewCount: place.Ratings,
			PlaceID:     place.PlaceID,
			MapLink:     mapLink(place.PlaceID),
			Tier:        tier,
		})
	}

	sort.Slice(competitors, func(i, j int) bool {
		return competitors[i].DistanceM < competitors[j].DistanceM
	})

	c.logger.Debug(ctx, "[PLACES_SEARCH_DONE] Competitor search finished", logging.Fields{
		"keyword":     keyword,
		"found":       len(payload.Results),
		"within_tier": len(competitors),
	})

	return competitors, nil
}

func mapLink(placeID string) string {
	if placeID == "" {
		return ""
	}
	return "https://www.google.com/maps/place/?q=place_id:" + url.QueryEscape(placeID)
}
