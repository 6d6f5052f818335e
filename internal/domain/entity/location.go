package entity

import "github.com/paulmach/orb"

// UserLocation is the latest known device position. It is replaced wholesale
// on every fix; no history is retained.
type UserLocation struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Accuracy  float64 `json:"accuracy"` // Horizontal accuracy in meters.
}

// Point returns the coordinate as an orb point (lng, lat order).
func (l UserLocation) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}
