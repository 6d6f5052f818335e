// Package alert provides the bundled AlertSink implementation.
package alert

import (
	"log/slog"

	"checkin/internal/domain/entity"
	"checkin/internal/domain/service"
)

// slogSink reports countdown expiry through the structured log. The device
// UI observes the phase change via the status endpoint and plays the tone.
type slogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a log-backed alert sink.
func NewSlogSink(logger *slog.Logger) service.AlertSink {
	return &slogSink{logger: logger}
}

// CountdownExpired logs the alert effect.
func (s *slogSink) CountdownExpired(record entity.CheckInRecord) {
	s.logger.Info("ALERT: countdown expired",
		slog.Int("point_id", record.PointID),
		slog.Time("started_at", record.Timestamp),
	)
}
