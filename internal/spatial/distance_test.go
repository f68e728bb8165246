package spatial

import (
	"math"
	"testing"

	"tradearea-platform/internal/models"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 35.681236, lng1: 139.767125,
			lat2: 35.681236, lng2: 139.767125,
			want: 0, tolerance: 0.001,
		},
		{
			name: "tokyo station to shinjuku station",
			lat1: 35.681236, lng1: 139.767125,
			lat2: 35.690921, lng2: 139.700258,
			want: 6100, tolerance: 200,
		},
		{
			name: "tokyo to osaka",
			lat1: 35.681236, lng1: 139.767125,
			lat2: 34.702485, lng2: 135.495951,
			want: 403000, tolerance: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceMeters() = %.0f, want %.0f ± %.0f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		distance float64
		want     int
	}{
		{0, 1},
		{500, 1},
		{501, 2},
		{1000, 2},
		{1500, 3},
		{2000, 3},
		{2001, 0},
	}

	for _, tt := range tests {
		if got := ClassifyTier(tt.distance, 500, 1000, 2000); got != tt.want {
			t.Errorf("ClassifyTier(%v) = %d, want %d", tt.distance, got, tt.want)
		}
	}
}

func TestTierRadii(t *testing.T) {
	r1, r2, r3 := TierRadii(models.RangeParams{RangeType: models.RangeTypeCircle})
	if r1 != 500 || r2 != 1000 || r3 != 2000 {
		t.Errorf("circle defaults = %d/%d/%d", r1, r2, r3)
	}

	r1, r2, r3 = TierRadii(models.RangeParams{
		RangeType: models.RangeTypeCircle,
		Radius1:   300, Radius2: 800, Radius3: 1500,
	})
	if r1 != 300 || r2 != 800 || r3 != 1500 {
		t.Errorf("explicit radii = %d/%d/%d", r1, r2, r3)
	}

	// 5/10/20 minutes at 30km/h: 2500m, 5000m, 10000m.
	r1, r2, r3 = TierRadii(models.RangeParams{RangeType: models.RangeTypeDriveTime})
	if r1 != 2500 || r2 != 5000 || r3 != 10000 {
		t.Errorf("drive-time defaults = %d/%d/%d", r1, r2, r3)
	}
}
