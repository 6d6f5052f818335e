package usecase

import (
	"context"
	"time"

	"checkin/internal/domain/entity"
	"checkin/internal/domain/service"
)

// Phase is the explicit lifecycle state. Exactly one phase holds at a time;
// every phase other than Idle carries an active record.
type Phase string

const (
	// PhaseIdle means no hold is in progress; auto-selection is live.
	PhaseIdle Phase = "IDLE"
	// PhaseCounting means a record exists and its countdown is running.
	PhaseCounting Phase = "COUNTING"
	// PhaseAwaitingFinalize means the countdown expired; the record is
	// retained and no longer auto-cancelable.
	PhaseAwaitingFinalize Phase = "AWAITING_FINALIZE"
	// PhaseSubmitting means a submission is in flight.
	PhaseSubmitting Phase = "SUBMITTING"
	// PhaseConfirming means the submission succeeded and the confirmation is
	// held visible for a short delay before the record is cleared.
	PhaseConfirming Phase = "CONFIRMING"
)

// PointView is the live classification of one catalog entry.
type PointView struct {
	ID             int                `json:"id"`
	PeriodID       string             `json:"periodId"`
	Name           string             `json:"name"`
	Latitude       float64            `json:"latitude"`
	Longitude      float64            `json:"longitude"`
	StartTime      string             `json:"startTime"`
	EndTime        string             `json:"endTime"`
	Status         entity.PointStatus `json:"status"`
	DistanceMeters *float64           `json:"distanceMeters,omitempty"`
	Selected       bool               `json:"selected"`
}

// StateView is a consistent snapshot of the lifecycle, derived on demand.
type StateView struct {
	Phase            Phase                `json:"phase"`
	SelectedPointID  *int                 `json:"selectedPointId,omitempty"`
	Location         *entity.UserLocation `json:"location,omitempty"`
	CountdownSeconds *int                 `json:"countdownSeconds,omitempty"`
	Points           []PointView          `json:"points"`
	Error            string               `json:"error,omitempty"`
	SubmitFailed     bool                 `json:"submitFailed"`
}

// CheckInUsecase is the check-in lifecycle state machine. All transitions are
// serialized; callers may invoke it from any goroutine.
type CheckInUsecase interface {
	// Restore loads the same-day snapshot on startup, reselecting the newest
	// record's point and recomputing the countdown from its absolute start.
	Restore(ctx context.Context) error

	// Run subscribes to the location source and drives clock ticks until ctx
	// is cancelled.
	Run(ctx context.Context) error

	// Snapshot derives the current state view.
	Snapshot() StateView

	// SelectPoint selects a catalog point manually. Rejected while a hold or
	// finalize is active.
	SelectPoint(ctx context.Context, pointID int) error

	// Capture creates a check-in record for the selected point from a
	// captured photo and arms the countdown. The point must be available.
	Capture(ctx context.Context, photoURL string) (*entity.CheckInRecord, error)

	// Submit finalizes the expired hold and transmits it to the notification
	// backend. One submission may be in flight at a time; failures leave the
	// record intact for manual retry.
	Submit(ctx context.Context) error

	// OnLocation applies one sample from the location source.
	OnLocation(ctx context.Context, update service.LocationUpdate)

	// Tick applies one clock tick at the given instant.
	Tick(ctx context.Context, now time.Time)
}
