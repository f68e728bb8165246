package clients

import (
	"fmt"
	"net/http"
	"time"
)

// Provider names used in logs and metrics labels.
const (
	ProviderStats     = "stats"
	ProviderGeocoding = "geocoding"
	ProviderPlaces    = "places"
)

const defaultTimeout = 30 * time.Second

// UpstreamError wraps a provider-side failure.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

// IsTransient reports whether a retry could plausibly succeed.
func (e *UpstreamError) IsTransient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
