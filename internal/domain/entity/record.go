package entity

import "time"

// CheckInRecord is one check-in attempt at a point, created the instant a
// photo is captured. At most one record per point exists at a time.
type CheckInRecord struct {
	PointID   int       `json:"pointId"`   // Foreign key to CheckInPoint.ID.
	Timestamp time.Time `json:"timestamp"` // Absolute capture instant; the countdown is derived from it.
	PhotoURL  string    `json:"photoUrl"`  // Photo artifact as a data URI.
}

// Remaining computes the countdown left at now for the given hold duration,
// clamped at zero. It is a pure function of the absolute start timestamp, so
// it self-corrects after arbitrary process suspension.
func (r CheckInRecord) Remaining(hold time.Duration, now time.Time) time.Duration {
	remaining := hold - now.Sub(r.Timestamp)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// SameCalendarDay reports whether two instants fall on the same calendar date,
// compared in b's location. Used by the daily-reset rule.
func SameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
