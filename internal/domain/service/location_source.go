// Package service defines contracts for external collaborators of the domain.
package service

import (
	"context"

	"checkin/internal/domain/entity"
)

// LocationErrorKind classifies a failed position fix.
type LocationErrorKind string

const (
	LocationErrPermissionDenied LocationErrorKind = "permission_denied"
	LocationErrUnavailable      LocationErrorKind = "unavailable"
	LocationErrTimeout          LocationErrorKind = "timeout"
	LocationErrOther            LocationErrorKind = "other"
)

// LocationUpdate is one sample from the location source: either a fix or a
// classified error, never both.
type LocationUpdate struct {
	Location *entity.UserLocation
	ErrKind  LocationErrorKind
	ErrMsg   string
}

// LocationSource supplies a stream of position updates. Samples may be
// arbitrarily spaced or absent; a consumer must tolerate operating with no
// known location.
type LocationSource interface {
	// Watch returns a channel of updates. The channel is closed when ctx is
	// cancelled.
	Watch(ctx context.Context) <-chan LocationUpdate
}
