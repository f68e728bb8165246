package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradearea-platform/internal/models"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

var testCollector = metrics.NewCollector("clients_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("clients-test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

const okSummary = `{
	"GET_SUMMARY": {
		"RESULT": {"STATUS": 0, "DATE": "2025-06-01"},
		"PARAMETER": {"RANGE_TYPE": "circle"},
		"POSITION_INF": {"PREFECTURE": "東京都", "CITY": "千代田区"},
		"DATASET_INF": [{"TABLE_INF": [{"TITLE": "男女別人口"}]}]
	}
}`

func TestStatsClientFetchSummary(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Write([]byte(okSummary))
	}))
	defer server.Close()

	client := NewStatsClient(server.URL, "test-key", 0, testLogger(), testCollector)

	dataset, err := client.FetchSummary(context.Background(), StatsQuery{
		Latitude:  35.68,
		Longitude: 139.76,
		Params:    models.RangeParams{RangeType: models.RangeTypeCircle, Radius1: 300},
	})
	if err != nil {
		t.Fatalf("FetchSummary() error = %v", err)
	}
	if len(dataset.Tables) != 1 || dataset.Position.City != "千代田区" {
		t.Errorf("dataset = %+v", dataset)
	}

	wantParams := map[string]string{
		"latitude":  "35.68",
		"longitude": "139.76",
		"rangeType": "circle",
		"radius1":   "300",
		"radius2":   "1000",
		"radius3":   "2000",
		"appId":     "test-key",
	}
	for key, want := range wantParams {
		if gotQuery[key] != want {
			t.Errorf("query %s = %q, want %q", key, gotQuery[key], want)
		}
	}
}

func TestStatsClientDriveTimeQuery(t *testing.T) {
	var got map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(okSummary))
	}))
	defer server.Close()

	client := NewStatsClient(server.URL, "", 0, testLogger(), testCollector)
	_, err := client.FetchSummary(context.Background(), StatsQuery{
		Params: models.RangeParams{
			RangeType:  models.RangeTypeDriveTime,
			Time1:      7,
			SpeedKmh:   40,
			TravelMode: "car",
		},
	})
	if err != nil {
		t.Fatalf("FetchSummary() error = %v", err)
	}

	for key, want := range map[string]string{
		"rangeType":  "driveTime",
		"time1":      "7",
		"time2":      "10",
		"time3":      "20",
		"speed":      "40",
		"travelMode": "car",
	} {
		if len(got[key]) == 0 || got[key][0] != want {
			t.Errorf("query %s = %v, want %q", key, got[key], want)
		}
	}
	if len(got["appId"]) != 0 {
		t.Error("appId must be omitted without an API key")
	}
}

func TestStatsClientProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"GET_SUMMARY": {"RESULT": {"STATUS": 100, "ERROR_MSG": "パラメータエラー"}}}`))
	}))
	defer server.Close()

	client := NewStatsClient(server.URL, "", 0, testLogger(), testCollector)
	_, err := client.FetchSummary(context.Background(), StatsQuery{})
	if err == nil {
		t.Fatal("expected error for provider failure status")
	}
	var uerr *UpstreamError
	if !errors.As(err, &uerr) || uerr.Provider != ProviderStats {
		t.Errorf("error = %v, want stats UpstreamError", err)
	}
}

func TestStatsClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewStatsClient(server.URL, "", 0, testLogger(), testCollector)
	_, err := client.FetchSummary(context.Background(), StatsQuery{})

	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if !uerr.IsTransient() {
		t.Error("502 should be transient")
	}
}
