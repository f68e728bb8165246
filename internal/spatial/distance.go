package spatial

import (
	"github.com/golang/geo/s2"

	"tradearea-platform/internal/models"
)

// EarthRadiusMeters is the mean earth radius used to scale angular distances.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return float64(p1.Distance(p2)) * EarthRadiusMeters
}

// ClassifyTier assigns a comparison-area tier (1-3) to a distance from the
// analysis center given the run's effective tier radii in meters. Distances
// beyond the outermost radius return 0.
func ClassifyTier(distanceM float64, r1, r2, r3 int) int {
	switch {
	case distanceM <= float64(r1):
		return 1
	case distanceM <= float64(r2):
		return 2
	case distanceM <= float64(r3):
		return 3
	default:
		return 0
	}
}

// TierRadii resolves the effective tier radii for a run. Drive-time runs
// convert minutes at the configured speed into straight-line meters, which
// intentionally overestimates reach slightly rather than drop competitors
// near the boundary.
func TierRadii(params models.RangeParams) (int, int, int) {
	if params.RangeType == models.RangeTypeDriveTime {
		speed := params.SpeedKmh
		if speed == 0 {
			speed = 30
		}
		toMeters := func(minutes, def int) int {
			if minutes == 0 {
				minutes = def
			}
			return int(speed * 1000 / 60 * float64(minutes))
		}
		return toMeters(params.Time1, 5), toMeters(params.Time2, 10), toMeters(params.Time3, 20)
	}

	r1, r2, r3 := params.Radius1, params.Radius2, params.Radius3
	if r1 == 0 {
		r1 = 500
	}
	if r2 == 0 {
		r2 = 1000
	}
	if r3 == 0 {
		r3 = 2000
	}
	return r1, r2, r3
}
