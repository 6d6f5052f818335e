package entity

// PointStatus classifies a point for display and capture gating.
type PointStatus string

const (
	// StatusChecked means a record already exists for the point. It wins over
	// every other condition since the attempt already happened.
	StatusChecked PointStatus = "CHECKED"
	// StatusClosed means the point is outside its daily time window.
	StatusClosed PointStatus = "CLOSED"
	// StatusTooFar means the point is active but beyond the distance threshold
	// (or the location is unknown).
	StatusTooFar PointStatus = "TOO_FAR"
	// StatusAvailable means the point is active, in range, and not yet checked.
	StatusAvailable PointStatus = "AVAILABLE"
)
