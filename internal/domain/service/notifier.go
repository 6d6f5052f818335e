package service

import "context"

// CheckInMessage is the finalized check-in payload handed to the notification
// backend. All numeric fields are pre-formatted strings; the receiver renders
// them verbatim.
type CheckInMessage struct {
	ChatID          string `json:"chatId"`
	LocationName    string `json:"locationName"`
	Period          string `json:"period"`
	PeriodStartTime string `json:"periodStartTime"`
	PeriodEndTime   string `json:"periodEndTime"`
	Lat             string `json:"lat"`      // 6-decimal latitude.
	Lng             string `json:"lng"`      // 6-decimal longitude.
	Distance        string `json:"distance"` // Whole meters.
	CheckInTime     string `json:"checkInTime"`
	CheckOutTime    string `json:"checkOutTime"`
	Photo           string `json:"photo"` // Data-URI image payload.
}

// CheckInNotifier transmits a finalized check-in to the remote notification
// backend. The call may block for unbounded network latency; the only
// observable failure mode is the returned error.
type CheckInNotifier interface {
	SendCheckIn(ctx context.Context, msg *CheckInMessage) error
}
