package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tradearea-platform/internal/models"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// StatsQuery describes one summary request against the statistics provider.
type StatsQuery struct {
	Latitude  float64
	Longitude float64
	Params    models.RangeParams
}

// StatsClient fetches area-aggregated statistics for a point.
type StatsClient interface {
	FetchSummary(ctx context.Context, query StatsQuery) (*models.StatisticalDataset, error)
}

type statsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.StructuredLogger
	mc         *metrics.Collector
}

// NewStatsClient creates a statistics provider client.
func NewStatsClient(baseURL, apiKey string, timeout time.Duration, logger *logging.StructuredLogger, mc *metrics.Collector) StatsClient {
	return &statsClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
		mc:         mc,
	}
}

// FetchSummary queries the provider and decodes the nested summary payload.
// A payload flagged failed by the provider surfaces as an UpstreamError even
// when the transport succeeded.
func (c *statsClient) FetchSummary(ctx context.Context, query StatsQuery) (*models.StatisticalDataset, error) {
	timer := c.mc.NewTimer(c.mc.UpstreamRequestDuration.WithLabelValues(ProviderStats))
	defer timer.ObserveDuration()

	reqURL := c.buildURL(query)

	c.logger.Debug(ctx, "[STATS_FETCH] Fetching summary", logging.Fields{
		"latitude":   query.Latitude,
		"longitude":  query.Longitude,
		"range_type": query.Params.RangeType,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stats request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.mc.RecordUpstreamError(ProviderStats, "transport")
		return nil, &UpstreamError{Provider: ProviderStats, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.mc.RecordUpstreamError(ProviderStats, "http_status")
		return nil, &UpstreamError{
			Provider:   ProviderStats,
			StatusCode: resp.StatusCode,
			Message:    "unexpected response status",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.mc.RecordUpstreamError(ProviderStats, "read_body")
		return nil, &UpstreamError{Provider: ProviderStats, Message: err.Error()}
	}

	dataset, err := models.DecodeDataset(body)
	if err != nil {
		c.mc.RecordUpstreamError(ProviderStats, "decode")
		return nil, fmt.Errorf("failed to decode summary payload: %w", err)
	}

	if dataset.Status.Failed() {
		c.mc.RecordUpstreamError(ProviderStats, "provider_status")
		return nil, &UpstreamError{
			Provider: ProviderStats,
			Message:  fmt.Sprintf("summary request failed with status %d: %s", dataset.Status.Code, dataset.Status.Message),
		}
	}

	c.logger.Info(ctx, "[STATS_FETCH_DONE] Summary fetched", logging.Fields{
		"table_count": len(dataset.Tables),
	})

	return dataset, nil
}

func (c *statsClient) buildURL(query StatsQuery) string {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(query.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(query.Longitude, 'f', -1, 64))
	if c.apiKey != "" {
		values.Set("appId", c.apiKey)
	}

	params := query.Params
	if params.RangeType == models.RangeTypeDriveTime {
		values.Set("rangeType", "driveTime")
		values.Set("time1", strconv.Itoa(orInt(params.Time1, 5)))
		values.Set("time2", strconv.Itoa(orInt(params.Time2, 10)))
		values.Set("time3", strconv.Itoa(orInt(params.Time3, 20)))
		speed := params.SpeedKmh
		if speed == 0 {
			speed = 30
		}
		values.Set("speed", strconv.FormatFloat(speed, 'f', -1, 64))
		if params.TravelMode != "" {
			values.Set("travelMode", params.TravelMode)
		}
	} else {
		values.Set("rangeType", "circle")
		values.Set("radius1", strconv.Itoa(orInt(params.Radius1, 500)))
		values.Set("radius2", strconv.Itoa(orInt(params.Radius2, 1000)))
		values.Set("radius3", strconv.Itoa(orInt(params.Radius3, 2000)))
	}

	return c.baseURL + "?" + values.Encode()
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
