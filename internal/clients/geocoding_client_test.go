package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocodingClientGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "東京都千代田区丸の内1-1" {
			t.Errorf("address = %q", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "日本、〒100-0005 東京都千代田区丸の内1-1",
				"geometry": {"location": {"lat": 35.681236, "lng": 139.767125}},
				"address_components": [
					{"long_name": "千代田区", "types": ["locality", "political"]},
					{"long_name": "東京都", "types": ["administrative_area_level_1", "political"]}
				]
			}]
		}`))
	}))
	defer server.Close()

	client := NewGeocodingClient(server.URL, "key", 0, testLogger(), testCollector)
	result, err := client.Geocode(context.Background(), "東京都千代田区丸の内1-1")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	if result.Latitude != 35.681236 || result.Longitude != 139.767125 {
		t.Errorf("coordinates = %v, %v", result.Latitude, result.Longitude)
	}
	if result.Prefecture != "東京都" || result.City != "千代田区" {
		t.Errorf("components = %q / %q", result.Prefecture, result.City)
	}
}

func TestGeocodingClientNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := NewGeocodingClient(server.URL, "", 0, testLogger(), testCollector)
	_, err := client.Geocode(context.Background(), "存在しない住所")
	if err == nil {
		t.Fatal("expected error for zero results")
	}
	var uerr *UpstreamError
	if !errors.As(err, &uerr) || uerr.Provider != ProviderGeocoding {
		t.Errorf("error = %v", err)
	}
}
