// Package geofence provides pure distance and eligibility computation over
// the point catalog. It holds no state; every function derives its answer
// from the arguments alone.
package geofence

import (
	"math"
	"time"

	"checkin/internal/domain/entity"

	"github.com/paulmach/orb"
)

// earthRadiusMeters is the spherical-earth radius used for great-circle math.
const earthRadiusMeters = 6371000.0

// Distance calculates the great-circle distance in meters between two
// coordinates using the haversine formula. Symmetric and zero for identical
// points.
func Distance(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	deltaLat := (b.Lat() - a.Lat()) * math.Pi / 180
	deltaLng := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// DistanceTo returns the distance in meters from the user location to the
// point, or +Inf when the location is unknown.
func DistanceTo(point entity.CheckInPoint, loc *entity.UserLocation) float64 {
	if loc == nil {
		return math.Inf(1)
	}

	return Distance(loc.Point(), point.Point())
}

// Classify determines the display status of a point. The ordering is a fixed
// priority: checked > closed > too far > available.
func Classify(point entity.CheckInPoint, loc *entity.UserLocation, instant time.Time, checked bool, thresholdMeters float64) entity.PointStatus {
	if checked {
		return entity.StatusChecked
	}
	if !point.Window.Contains(instant) {
		return entity.StatusClosed
	}
	if DistanceTo(point, loc) > thresholdMeters {
		return entity.StatusTooFar
	}

	return entity.StatusAvailable
}

// NearestEligible returns the schedule-active, not-yet-checked point nearest
// to the location. Ties are broken by catalog order (first wins). Returns nil
// when the location is unknown or no point qualifies; in particular, when
// every active point is already checked, nothing is selected.
func NearestEligible(points entity.Catalog, loc *entity.UserLocation, instant time.Time, checked func(pointID int) bool) *entity.CheckInPoint {
	if loc == nil {
		return nil
	}

	var nearest *entity.CheckInPoint
	minDistance := math.Inf(1)
	for i := range points {
		point := &points[i]
		if !point.Window.Contains(instant) {
			continue
		}
		if checked != nil && checked(point.ID) {
			continue
		}
		if dist := Distance(loc.Point(), point.Point()); dist < minDistance {
			minDistance = dist
			nearest = point
		}
	}

	return nearest
}
