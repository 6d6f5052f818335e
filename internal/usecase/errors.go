package usecase

import "errors"

var (
	// ErrSelectionLocked is returned when selecting a point while a hold or finalize is active
	ErrSelectionLocked = errors.New("selection locked while a check-in is in progress")
	// ErrUnknownPoint is returned for a point id outside the catalog
	ErrUnknownPoint = errors.New("unknown check-in point")
	// ErrNoSelection is returned when capturing with no point selected
	ErrNoSelection = errors.New("no check-in point selected")
	// ErrPointNotEligible is returned when capturing for a point that is not available
	ErrPointNotEligible = errors.New("selected point is not eligible for check-in")
	// ErrHoldInProgress is returned when capturing while a hold is already running
	ErrHoldInProgress = errors.New("a check-in hold is already in progress")
	// ErrNothingToFinalize is returned when submitting without an expired hold
	ErrNothingToFinalize = errors.New("no check-in is awaiting finalization")
	// ErrSubmitInFlight is returned when submitting while a submission is already in flight
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	// ErrLocationUnknown is returned when submitting without a known location
	ErrLocationUnknown = errors.New("current location is unknown")
)
