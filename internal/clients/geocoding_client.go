package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// GeocodeResult is the resolved location for an address query.
type GeocodeResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	Prefecture       string  `json:"prefecture,omitempty"`
	City             string  `json:"city,omitempty"`
}

// GeocodingClient resolves free-form addresses to coordinates.
type GeocodingClient interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

type geocodingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.StructuredLogger
	mc         *metrics.Collector
}

// NewGeocodingClient creates a geocoding provider client.
func NewGeocodingClient(baseURL, apiKey string, timeout time.Duration, logger *logging.StructuredLogger, mc *metrics.Collector) GeocodingClient {
	return &geocodingClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
		mc:         mc,
	}
}

// geocodeResponse mirrors the provider's response envelope.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Geocode resolves one address. Zero results is an UpstreamError, not a nil
// result.
func (c *geocodingClient) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	timer := c.mc.NewTimer(c.mc.UpstreamRequestDuration.WithLabelValues(ProviderGeocoding))
	defer timer.ObserveDuration()

	values := url.Values{}
	values.Set("address", address)
	values.Set("language", "ja")
	if c.apiKey != "" {
		values.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.mc.RecordUpstreamError(ProviderGeocoding, "transport")
		return nil, &UpstreamError{Provider: ProviderGeocoding, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.mc.RecordUpstreamError(ProviderGeocoding, "http_status")
		return nil, &UpstreamError{
			Provider:   ProviderGeocoding,
			StatusCode: resp.StatusCode,
			Message:    "unexpected response status",
		}
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.mc.RecordUpstreamError(ProviderGeocoding, "decode")
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		c.mc.RecordUpstreamError(ProviderGeocoding, "no_results")
		return nil, &UpstreamError{
			Provider: ProviderGeocoding,
			Message:  fmt.Sprintf("no results for address (status %s)", payload.Status),
		}
	}

	top := payload.Results[0]
	result := &GeocodeResult{
		Latitude:         top.Geometry.Location.Lat,
		Longitude:        top.Geometry.Location.Lng,
		FormattedAddress: top.FormattedAddress,
	}
	for _, comp := range top.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "administrative_area_level_1":
				result.Prefecture = comp.LongName
			case "locality":
				result.City = comp.LongName
			}
		}
	}

	c.logger.Debug(ctx, "[GEOCODE_DONE] Address resolved", logging.Fields{
		"latitude":  result.Latitude,
		"longitude": result.Longitude,
	})

	return result, nil
}
