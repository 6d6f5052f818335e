package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"checkin/config"
	"checkin/internal/domain/entity"
	"checkin/internal/domain/service"

	"github.com/stretchr/testify/require"
)

// Bangkok city center, roughly. Gate B sits ~222 m north of Gate A, outside
// the 200 m check-in radius when standing at Gate A.
const (
	baseLat = 13.7563
	baseLng = 100.5018
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)

	return c.now
}

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	records []entity.CheckInRecord
	saveErr error
	loadErr error
}

func (r *fakeSnapshotRepo) Save(_ context.Context, records []entity.CheckInRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append([]entity.CheckInRecord(nil), records...)

	return nil
}

func (r *fakeSnapshotRepo) LoadSameDay(_ context.Context, _ time.Time) ([]entity.CheckInRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}

	return append([]entity.CheckInRecord(nil), r.records...), nil
}

func (r *fakeSnapshotRepo) Close() error { return nil }

func (r *fakeSnapshotRepo) stored() []entity.CheckInRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]entity.CheckInRecord(nil), r.records...)
}

type fakeNotifier struct {
	mu sync.Mutex
	// release, when non-nil, blocks SendCheckIn until closed.
	release chan struct{}
	sent    []*service.CheckInMessage
	err     error
}

func (n *fakeNotifier) SendCheckIn(_ context.Context, msg *service.CheckInMessage) error {
	n.mu.Lock()
	release := n.release
	n.mu.Unlock()

	if release != nil {
		<-release
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)

	return n.err
}

func (n *fakeNotifier) sentMessages() []*service.CheckInMessage {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]*service.CheckInMessage(nil), n.sent...)
}

func (n *fakeNotifier) setErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

type recordingAlertSink struct {
	mu      sync.Mutex
	expired []entity.CheckInRecord
}

func (s *recordingAlertSink) CountdownExpired(record entity.CheckInRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = append(s.expired, record)
}

func (s *recordingAlertSink) fired() []entity.CheckInRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entity.CheckInRecord(nil), s.expired...)
}

type stubSource struct {
	updates chan service.LocationUpdate
}

func (s *stubSource) Watch(_ context.Context) <-chan service.LocationUpdate {
	return s.updates
}

func testConfig() *config.Config {
	cfg := &config.Config{
		CheckIn: &config.CheckInConfig{
			DistanceThresholdMeters: 200,
			HoldDuration:            16 * time.Minute,
			ConfirmationDelay:       2 * time.Second,
			ErrorBannerDelay:        5 * time.Second,
			TickInterval:            time.Second,
		},
		Notification: &config.NotificationConfig{
			ChatID:   "chat-1",
			Timezone: "UTC",
		},
	}

	return cfg
}

func testCatalog(t *testing.T) entity.Catalog {
	t.Helper()

	gateA, err := entity.NewCheckInPoint(101, "morning", "Gate A", baseLat, baseLng, "00:00", "23:59")
	require.NoError(t, err)
	gateB, err := entity.NewCheckInPoint(102, "morning", "Gate B", baseLat+0.002, baseLng, "00:00", "23:59")
	require.NoError(t, err)
	gateC, err := entity.NewCheckInPoint(103, "evening", "Gate C", baseLat, baseLng, "08:00", "09:00")
	require.NoError(t, err)

	return entity.Catalog{gateA, gateB, gateC}
}

type fixture struct {
	service  *checkInService
	clock    *fakeClock
	repo     *fakeSnapshotRepo
	notifier *fakeNotifier
	alerts   *recordingAlertSink
	source   *stubSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &fakeSnapshotRepo{}
	notifier := &fakeNotifier{}
	alerts := &recordingAlertSink{}
	source := &stubSource{updates: make(chan service.LocationUpdate, 1)}
	clock := newFakeClock(baseTime)

	uc, err := NewCheckInService(testConfig(), newDiscardLogger(), testCatalog(t), repo, notifier, alerts, source)
	require.NoError(t, err)

	svc, ok := uc.(*checkInService)
	require.True(t, ok)
	svc.clock = clock.Now

	return &fixture{
		service:  svc,
		clock:    clock,
		repo:     repo,
		notifier: notifier,
		alerts:   alerts,
		source:   source,
	}
}

// reportLocation feeds one fix into the state machine.
func (f *fixture) reportLocation(lat, lng float64) {
	f.service.OnLocation(context.Background(), service.LocationUpdate{
		Location: &entity.UserLocation{Latitude: lat, Longitude: lng, Accuracy: 5},
	})
}

// startHold positions the user at Gate A and captures a check-in there.
func (f *fixture) startHold(t *testing.T) *entity.CheckInRecord {
	t.Helper()

	f.reportLocation(baseLat, baseLng)
	record, err := f.service.Capture(context.Background(), "data:image/jpeg;base64,Zm9v")
	require.NoError(t, err)

	return record
}
