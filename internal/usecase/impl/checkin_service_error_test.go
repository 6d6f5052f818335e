package impl

import (
	"context"
	"testing"
	"time"

	"checkin/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInService_SelectPoint_Unknown(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.service.SelectPoint(context.Background(), 999), usecase.ErrUnknownPoint)
}

func TestCheckInService_SelectPoint_LockedDuringHold(t *testing.T) {
	f := newFixture(t)
	f.startHold(t)

	assert.ErrorIs(t, f.service.SelectPoint(context.Background(), 102), usecase.ErrSelectionLocked)

	// Still locked after the countdown expires.
	now := f.clock.Advance(16 * time.Minute)
	f.service.Tick(context.Background(), now)
	assert.ErrorIs(t, f.service.SelectPoint(context.Background(), 102), usecase.ErrSelectionLocked)
}

func TestCheckInService_Capture_NoSelection(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Capture(context.Background(), "data:image/jpeg;base64,Zm9v")
	assert.ErrorIs(t, err, usecase.ErrNoSelection)
}

func TestCheckInService_Capture_HoldInProgress(t *testing.T) {
	f := newFixture(t)
	f.startHold(t)

	_, err := f.service.Capture(context.Background(), "data:image/jpeg;base64,Zm9v")
	assert.ErrorIs(t, err, usecase.ErrHoldInProgress)
}

func TestCheckInService_Capture_ClosedPoint(t *testing.T) {
	f := newFixture(t)
	f.reportLocation(baseLat, baseLng)

	// Gate C is co-located but outside its schedule window at noon.
	require.NoError(t, f.service.SelectPoint(context.Background(), 103))

	_, err := f.service.Capture(context.Background(), "data:image/jpeg;base64,Zm9v")
	assert.ErrorIs(t, err, usecase.ErrPointNotEligible)
	assert.Equal(t, usecase.PhaseIdle, f.service.Snapshot().Phase)
}

func TestCheckInService_Capture_TooFar(t *testing.T) {
	f := newFixture(t)
	f.reportLocation(baseLat, baseLng)

	// Gate B is ~222 m away, outside the 200 m radius.
	require.NoError(t, f.service.SelectPoint(context.Background(), 102))

	_, err := f.service.Capture(context.Background(), "data:image/jpeg;base64,Zm9v")
	assert.ErrorIs(t, err, usecase.ErrPointNotEligible)
	assert.Empty(t, f.repo.stored())
}

func TestCheckInService_Submit_NothingToFinalize(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.service.Submit(context.Background()), usecase.ErrNothingToFinalize)

	// Still counting: the hold must run out first.
	f.startHold(t)
	assert.ErrorIs(t, f.service.Submit(context.Background()), usecase.ErrNothingToFinalize)
}

func TestCheckInService_Submit_LocationUnknown(t *testing.T) {
	f := newFixture(t)
	f.startHold(t)

	now := f.clock.Advance(16 * time.Minute)
	f.service.Tick(context.Background(), now)

	f.service.mu.Lock()
	f.service.location = nil
	f.service.mu.Unlock()

	assert.ErrorIs(t, f.service.Submit(context.Background()), usecase.ErrLocationUnknown)
}

func TestCheckInService_Capture_PersistFailureTolerated(t *testing.T) {
	f := newFixture(t)
	f.repo.saveErr = assert.AnError
	f.reportLocation(baseLat, baseLng)

	// Storage trouble never blocks the live lifecycle.
	record, err := f.service.Capture(context.Background(), "data:image/jpeg;base64,Zm9v")
	require.NoError(t, err)
	assert.Equal(t, 101, record.PointID)
	assert.Equal(t, usecase.PhaseCounting, f.service.Snapshot().Phase)
}
