// Package entity contains the core business objects of the project.
package entity

import (
	"github.com/paulmach/orb"
)

// CheckInPoint is a configured geographic check-in target. The catalog is
// immutable after startup; points are never mutated at runtime.
type CheckInPoint struct {
	ID        int            // Stable unique identifier of the point.
	PeriodID  string         // Identifier of the schedule period this point belongs to.
	Name      string         // Human-readable display name.
	Latitude  float64        // Geographic latitude in degrees (WGS84).
	Longitude float64        // Geographic longitude in degrees (WGS84).
	Window    ScheduleWindow // Daily active time window.
}

// NewCheckInPoint builds a catalog entry, parsing the "HH:mm" window bounds.
func NewCheckInPoint(id int, periodID, name string, lat, lng float64, start, end string) (CheckInPoint, error) {
	window, err := ParseScheduleWindow(start, end)
	if err != nil {
		return CheckInPoint{}, err
	}

	return CheckInPoint{
		ID:        id,
		PeriodID:  periodID,
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Window:    window,
	}, nil
}

// Point returns the coordinate as an orb point (lng, lat order).
func (p CheckInPoint) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Catalog is the ordered list of configured check-in points. Order matters:
// nearest-point ties are broken by catalog position.
type Catalog []CheckInPoint

// FindByID returns the point with the given id, or nil when absent.
func (c Catalog) FindByID(id int) *CheckInPoint {
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}

	return nil
}
