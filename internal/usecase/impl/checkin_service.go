package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"checkin/config"
	"checkin/internal/domain/entity"
	"checkin/internal/domain/geofence"
	"checkin/internal/domain/repository"
	"checkin/internal/domain/service"
	"checkin/internal/usecase"
	"checkin/internal/util"
)

// User-visible banner texts, matching the device UI locale.
const (
	bannerGeofenceExit = "คุณออกนอกรัศมี! การนับถอยหลังถูกยกเลิก"

	payloadTimeLayout = "2006-01-02 15:04:05"
)

type checkInService struct {
	cfg       *config.Config
	logger    *slog.Logger
	points    entity.Catalog
	snapshots repository.SnapshotRepository
	notifier  service.CheckInNotifier
	alerts    service.AlertSink
	source    service.LocationSource
	timezone  *time.Location
	clock     func() time.Time

	mu       sync.Mutex
	location *entity.UserLocation
	records  []entity.CheckInRecord
	selected *int
	phase    usecase.Phase
	// active is a copy of the record driving the current hold.
	// Invariant: phase == Idle ⇔ active == nil.
	active         *entity.CheckInRecord
	banner         string
	bannerUntil    time.Time
	submitFailed   bool
	confirmClearAt time.Time
}

// NewCheckInService creates the check-in lifecycle service.
func NewCheckInService(
	cfg *config.Config,
	logger *slog.Logger,
	points entity.Catalog,
	snapshots repository.SnapshotRepository,
	notifier service.CheckInNotifier,
	alerts service.AlertSink,
	source service.LocationSource,
) (usecase.CheckInUsecase, error) {
	timezone, err := time.LoadLocation(cfg.Notification.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Notification.Timezone, err)
	}

	return &checkInService{
		cfg:       cfg,
		logger:    logger,
		points:    points,
		snapshots: snapshots,
		notifier:  notifier,
		alerts:    alerts,
		source:    source,
		timezone:  timezone,
		clock:     time.Now,
		phase:     usecase.PhaseIdle,
	}, nil
}

// Restore loads the same-day snapshot and rebuilds the derived lifecycle
// state. The countdown is recomputed from the newest record's absolute start
// timestamp, so elapsed wall-clock time is counted across the restart.
func (s *checkInService) Restore(ctx context.Context) error {
	now := s.clock().In(s.timezone)

	records, err := s.snapshots.LoadSameDay(ctx, now)
	if err != nil {
		// Corrupt or unreadable state is treated as absence: start fresh.
		s.logger.Warn("failed to load check-in snapshot, starting fresh", slog.Any("error", err))

		return nil
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = records
	last := records[len(records)-1]
	s.selected = &last.PointID
	s.active = &last
	if last.Remaining(s.cfg.CheckIn.HoldDuration, now) > 0 {
		s.phase = usecase.PhaseCounting
	} else {
		s.phase = usecase.PhaseAwaitingFinalize
	}

	s.logger.Info("restored check-in state",
		slog.Int("records", len(records)),
		slog.Int("point_id", last.PointID),
		slog.String("phase", string(s.phase)),
		slog.String("remaining", util.FormatDuration(last.Remaining(s.cfg.CheckIn.HoldDuration, now))),
	)

	return nil
}

// Run funnels location updates and clock ticks into the serialized state
// machine until ctx is cancelled.
func (s *checkInService) Run(ctx context.Context) error {
	updates := s.source.Watch(ctx)

	ticker := time.NewTicker(s.cfg.CheckIn.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			s.OnLocation(ctx, update)
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// OnLocation applies one location sample: a fix replaces the known position
// wholesale, an error surfaces a transient banner and leaves it unchanged.
func (s *checkInService) OnLocation(ctx context.Context, update service.LocationUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()

	if update.Location == nil {
		s.setBannerLocked(locationErrorBanner(update), now)

		return
	}

	s.location = update.Location

	switch s.phase {
	case usecase.PhaseCounting:
		s.cancelIfOutOfRangeLocked(ctx, now)
	case usecase.PhaseIdle:
		s.autoSelectLocked(now)
	}
}

// Tick advances every time-derived piece of state. All countdown and banner
// decisions are recomputed from absolute timestamps, so a burst of missed
// ticks (process suspension) self-corrects on the next one.
func (s *checkInService) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.banner != "" && !now.Before(s.bannerUntil) {
		s.banner = ""
	}

	switch s.phase {
	case usecase.PhaseCounting:
		if s.cancelIfOutOfRangeLocked(ctx, now) {
			return
		}
		if s.active.Remaining(s.cfg.CheckIn.HoldDuration, now) == 0 {
			s.phase = usecase.PhaseAwaitingFinalize
			s.alerts.CountdownExpired(*s.active)
			s.logger.Info("countdown expired, awaiting finalization",
				slog.Int("point_id", s.active.PointID),
			)
		}
	case usecase.PhaseConfirming:
		if !now.Before(s.confirmClearAt) {
			s.completeLocked(ctx)
		}
	case usecase.PhaseIdle:
		s.autoSelectLocked(now)
	}
}

// SelectPoint applies a manual selection. The user's commitment to a running
// hold is never silently overridden, so the call is rejected outside Idle.
func (s *checkInService) SelectPoint(_ context.Context, pointID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != usecase.PhaseIdle {
		return usecase.ErrSelectionLocked
	}
	point := s.points.FindByID(pointID)
	if point == nil {
		return usecase.ErrUnknownPoint
	}

	s.selected = &point.ID

	return nil
}

// Capture creates a check-in record from a captured photo and arms the
// countdown at the full hold duration.
func (s *checkInService) Capture(ctx context.Context, photoURL string) (*entity.CheckInRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != usecase.PhaseIdle {
		return nil, usecase.ErrHoldInProgress
	}
	if s.selected == nil {
		return nil, usecase.ErrNoSelection
	}
	point := s.points.FindByID(*s.selected)
	if point == nil {
		return nil, usecase.ErrUnknownPoint
	}

	now := s.clock()
	status := geofence.Classify(*point, s.location, now.In(s.timezone), s.hasRecordLocked(point.ID), s.cfg.CheckIn.DistanceThresholdMeters)
	if status != entity.StatusAvailable {
		return nil, fmt.Errorf("%w: point %d is %s", usecase.ErrPointNotEligible, point.ID, status)
	}

	record := entity.CheckInRecord{
		PointID:   point.ID,
		Timestamp: now,
		PhotoURL:  photoURL,
	}
	s.records = append(s.records, record)
	s.persistLocked(ctx)

	s.active = &record
	s.phase = usecase.PhaseCounting
	s.submitFailed = false

	s.logger.Info("check-in started",
		slog.Int("point_id", point.ID),
		slog.String("point", point.Name),
		slog.Duration("hold", s.cfg.CheckIn.HoldDuration),
	)

	return &record, nil
}

// Submit transmits the finalized check-in. The notifier call runs outside the
// state lock since it may block on the network for an unbounded time.
func (s *checkInService) Submit(ctx context.Context) error {
	s.mu.Lock()

	switch s.phase {
	case usecase.PhaseSubmitting:
		s.mu.Unlock()

		return usecase.ErrSubmitInFlight
	case usecase.PhaseAwaitingFinalize:
		// proceed
	default:
		s.mu.Unlock()

		return usecase.ErrNothingToFinalize
	}
	if s.location == nil {
		s.mu.Unlock()

		return usecase.ErrLocationUnknown
	}

	point := s.points.FindByID(s.active.PointID)
	if point == nil {
		s.mu.Unlock()

		return usecase.ErrUnknownPoint
	}

	msg := s.buildMessageLocked(*point, *s.active, *s.location)
	s.phase = usecase.PhaseSubmitting
	s.mu.Unlock()

	err := s.notifier.SendCheckIn(ctx, msg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// The record is retained; the user drives retries explicitly.
		s.phase = usecase.PhaseAwaitingFinalize
		s.submitFailed = true
		s.logger.Error("check-in submission failed",
			slog.Int("point_id", point.ID),
			slog.Any("error", err),
		)

		return fmt.Errorf("failed to send check-in notification: %w", err)
	}

	s.submitFailed = false
	s.phase = usecase.PhaseConfirming
	s.confirmClearAt = s.clock().Add(s.cfg.CheckIn.ConfirmationDelay)
	s.logger.Info("check-in submitted", slog.Int("point_id", point.ID))

	return nil
}

// Snapshot derives a consistent view of the lifecycle at the current instant.
func (s *checkInService) Snapshot() usecase.StateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	local := now.In(s.timezone)

	view := usecase.StateView{
		Phase:        s.phase,
		Location:     s.location,
		Error:        s.banner,
		SubmitFailed: s.submitFailed,
		Points:       make([]usecase.PointView, 0, len(s.points)),
	}
	if s.selected != nil {
		id := *s.selected
		view.SelectedPointID = &id
	}
	if s.phase == usecase.PhaseCounting {
		secs := countdownSeconds(*s.active, s.cfg.CheckIn.HoldDuration, now)
		view.CountdownSeconds = &secs
	}

	for _, point := range s.points {
		pv := usecase.PointView{
			ID:        point.ID,
			PeriodID:  point.PeriodID,
			Name:      point.Name,
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			StartTime: point.Window.Start.String(),
			EndTime:   point.Window.End.String(),
			Status:    geofence.Classify(point, s.location, local, s.hasRecordLocked(point.ID), s.cfg.CheckIn.DistanceThresholdMeters),
			Selected:  s.selected != nil && *s.selected == point.ID,
		}
		if s.location != nil {
			dist := geofence.Distance(s.location.Point(), point.Point())
			pv.DistanceMeters = &dist
		}
		view.Points = append(view.Points, pv)
	}

	return view
}

// autoSelectLocked re-evaluates the nearest eligible point. A nil result
// leaves the previous selection in place; points with an existing record are
// excluded from the ranking, so when every active point is already checked
// nothing new gets selected.
func (s *checkInService) autoSelectLocked(now time.Time) {
	nearest := geofence.NearestEligible(s.points, s.location, now.In(s.timezone), s.hasRecordLocked)
	if nearest == nil {
		return
	}
	if s.selected != nil && *s.selected == nearest.ID {
		return
	}

	s.selected = &nearest.ID
	s.logger.Debug("auto-selected nearest point",
		slog.Int("point_id", nearest.ID),
		slog.String("point", nearest.Name),
	)
}

// cancelIfOutOfRangeLocked enforces geofence-exit cancellation while counting
// down. This is a hard cancel: the record and its photo are discarded.
// Reports whether a cancellation happened.
func (s *checkInService) cancelIfOutOfRangeLocked(ctx context.Context, now time.Time) bool {
	if s.location == nil {
		return false
	}
	point := s.points.FindByID(s.active.PointID)
	if point == nil {
		return false
	}

	dist := geofence.Distance(s.location.Point(), point.Point())
	if dist <= s.cfg.CheckIn.DistanceThresholdMeters {
		return false
	}

	s.removeRecordLocked(ctx, s.active.PointID)
	s.active = nil
	s.phase = usecase.PhaseIdle
	s.setBannerLocked(bannerGeofenceExit, now)

	s.logger.Warn("geofence exit, check-in cancelled",
		slog.Int("point_id", point.ID),
		slog.Float64("distance_m", dist),
		slog.Float64("threshold_m", s.cfg.CheckIn.DistanceThresholdMeters),
	)

	return true
}

// completeLocked clears the confirmed record once the confirmation delay has
// elapsed and returns the lifecycle to auto-selection.
func (s *checkInService) completeLocked(ctx context.Context) {
	pointID := s.active.PointID
	s.removeRecordLocked(ctx, pointID)
	s.active = nil
	s.selected = nil
	s.phase = usecase.PhaseIdle

	s.logger.Info("check-in completed", slog.Int("point_id", pointID))
}

func (s *checkInService) removeRecordLocked(ctx context.Context, pointID int) {
	kept := s.records[:0]
	for _, record := range s.records {
		if record.PointID != pointID {
			kept = append(kept, record)
		}
	}
	s.records = kept
	s.persistLocked(ctx)
}

// persistLocked mirrors the record set to durable storage. Persistence
// failure is logged and otherwise ignored: the live state machine stays
// authoritative for the session.
func (s *checkInService) persistLocked(ctx context.Context) {
	if err := s.snapshots.Save(ctx, s.records); err != nil {
		s.logger.Warn("failed to persist check-in snapshot", slog.Any("error", err))
	}
}

func (s *checkInService) hasRecordLocked(pointID int) bool {
	for _, record := range s.records {
		if record.PointID == pointID {
			return true
		}
	}

	return false
}

func (s *checkInService) setBannerLocked(msg string, now time.Time) {
	s.banner = msg
	s.bannerUntil = now.Add(s.cfg.CheckIn.ErrorBannerDelay)
}

// buildMessageLocked composes the webhook payload for the active record.
func (s *checkInService) buildMessageLocked(point entity.CheckInPoint, record entity.CheckInRecord, loc entity.UserLocation) *service.CheckInMessage {
	dist := geofence.Distance(loc.Point(), point.Point())
	checkIn := record.Timestamp.In(s.timezone)
	checkOut := checkIn.Add(s.cfg.CheckIn.HoldDuration)

	return &service.CheckInMessage{
		ChatID:          s.cfg.Notification.ChatID,
		LocationName:    point.Name,
		Period:          point.PeriodID,
		PeriodStartTime: point.Window.Start.String(),
		PeriodEndTime:   point.Window.End.String(),
		Lat:             strconv.FormatFloat(loc.Latitude, 'f', 6, 64),
		Lng:             strconv.FormatFloat(loc.Longitude, 'f', 6, 64),
		Distance:        strconv.Itoa(int(math.Round(dist))),
		CheckInTime:     checkIn.Format(payloadTimeLayout),
		CheckOutTime:    checkOut.Format(payloadTimeLayout),
		Photo:           record.PhotoURL,
	}
}

// countdownSeconds mirrors the device UI arithmetic: whole elapsed seconds
// subtracted from the whole hold duration, clamped at zero.
func countdownSeconds(record entity.CheckInRecord, hold time.Duration, now time.Time) int {
	elapsed := int(now.Sub(record.Timestamp) / time.Second)
	remaining := int(hold/time.Second) - elapsed
	if remaining < 0 {
		return 0
	}

	return remaining
}

// locationErrorBanner maps a classified GPS failure to its user-visible text.
func locationErrorBanner(update service.LocationUpdate) string {
	switch update.ErrKind {
	case service.LocationErrPermissionDenied:
		return "กรุณาอนุญาตสิทธิ์เข้าถึงพิกัด"
	case service.LocationErrUnavailable:
		return "ไม่พบสัญญาณ GPS"
	case service.LocationErrTimeout:
		return "หมดเวลาการค้นหาตำแหน่ง"
	default:
		if update.ErrMsg != "" {
			return "ข้อผิดพลาด GPS: " + update.ErrMsg
		}

		return "ไม่สามารถระบุตำแหน่งได้"
	}
}
