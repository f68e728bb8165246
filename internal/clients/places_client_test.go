package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradearea-platform/internal/models"
)

// Offsets of roughly 0.0045 degrees latitude are ~500m.
func placesPayload(centerLat, centerLng float64) string {
	return fmt.Sprintf(`{
		"status": "OK",
		"results": [
			{"name": "遠い店", "place_id": "far", "vicinity": "郊外",
			 "geometry": {"location": {"lat": %f, "lng": %f}}},
			{"name": "近い店", "place_id": "near", "vicinity": "駅前", "rating": 4.1,
			 "user_ratings_total": 20,
			 "geometry": {"location": {"lat": %f, "lng": %f}}},
			{"name": "圏外の店", "place_id": "out",
			 "geometry": {"location": {"lat": %f, "lng": %f}}}
		]
	}`,
		centerLat+0.0120, centerLng, // ~1.3km: tier 3 radius is 2km
		centerLat+0.0020, centerLng, // ~220m: tier 1
		centerLat+0.0500, centerLng, // ~5.5km: outside all tiers
	)
}

func TestPlacesClientSearchCompetitors(t *testing.T) {
	const lat, lng = 35.68, 139.76

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("radius"); got != "2000" {
			t.Errorf("radius = %q, want outermost tier 2000", got)
		}
		w.Write([]byte(placesPayload(lat, lng)))
	}))
	defer server.Close()

	client := NewPlacesClient(server.URL, "", 0, testLogger(), testCollector)
	competitors, err := client.SearchCompetitors(context.Background(), lat, lng, "コンビニ",
		models.RangeParams{RangeType: models.RangeTypeCircle})
	if err != nil {
		t.Fatalf("SearchCompetitors() error = %v", err)
	}

	// The out-of-range hit is dropped; the rest sort by distance.
	if len(competitors) != 2 {
		t.Fatalf("got %d competitors, want 2", len(competitors))
	}
	if competitors[0].Name != "近い店" || competitors[1].Name != "遠い店" {
		t.Errorf("order = %q, %q", competitors[0].Name, competitors[1].Name)
	}
	if competitors[0].Tier != 1 {
		t.Errorf("near tier = %d, want 1", competitors[0].Tier)
	}
	if competitors[1].Tier != 3 {
		t.Errorf("far tier = %d, want 3", competitors[1].Tier)
	}
	if competitors[0].MapLink == "" || competitors[0].PlaceID != "near" {
		t.Errorf("map link/place id = %+v", competitors[0])
	}
	if competitors[0].Rating != 4.1 || competitors[0].ReviewCount != 20 {
		t.Errorf("rating fields = %+v", competitors[0])
	}
}

func TestPlacesClientZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := NewPlacesClient(server.URL, "", 0, testLogger(), testCollector)
	competitors, err := client.SearchCompetitors(context.Background(), 35.68, 139.76, "コンビニ",
		models.RangeParams{RangeType: models.RangeTypeCircle})
	if err != nil {
		t.Fatalf("ZERO_RESULTS must not error: %v", err)
	}
	if len(competitors) != 0 {
		t.Errorf("got %d competitors, want none", len(competitors))
	}
}

func TestPlacesClientProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED"}`))
	}))
	defer server.Close()

	client := NewPlacesClient(server.URL, "", 0, testLogger(), testCollector)
	if _, err := client.SearchCompetitors(context.Background(), 35.68, 139.76, "x",
		models.RangeParams{}); err == nil {
		t.Fatal("expected error for denied request")
	}
}
