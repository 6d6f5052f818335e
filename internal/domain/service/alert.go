package service

import "checkin/internal/domain/entity"

// AlertSink receives the audible-alert effect emitted when a countdown
// expires. The presentation layer decides how to render it; the lifecycle
// only reports that it happened.
type AlertSink interface {
	CountdownExpired(record entity.CheckInRecord)
}
