package entity

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ClockTime is a time of day with minute precision, parsed from "HH:mm".
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an "HH:mm" string into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &ct.Hour, &ct.Minute); err != nil {
		return ClockTime{}, errors.Wrapf(err, "parse clock time %q", s)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 {
		return ClockTime{}, errors.Errorf("clock time %q out of range", s)
	}

	return ct, nil
}

// SecondOfDay returns the clock time as seconds since midnight.
func (ct ClockTime) SecondOfDay() int {
	return ct.Hour*3600 + ct.Minute*60
}

// String formats the clock time back to "HH:mm".
func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// ScheduleWindow is a daily active window. When End is earlier than Start the
// window wraps past midnight.
type ScheduleWindow struct {
	Start ClockTime
	End   ClockTime
}

// ParseScheduleWindow builds a window from two "HH:mm" strings.
func ParseScheduleWindow(start, end string) (ScheduleWindow, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return ScheduleWindow{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return ScheduleWindow{}, err
	}

	return ScheduleWindow{Start: s, End: e}, nil
}

// Contains reports whether the instant's time of day falls inside the window.
// Membership is [start, end); a wrapping window (end < start) is satisfied by
// instants at or after start OR at or before end.
func (w ScheduleWindow) Contains(instant time.Time) bool {
	tod := instant.Hour()*3600 + instant.Minute()*60 + instant.Second()
	start := w.Start.SecondOfDay()
	end := w.End.SecondOfDay()

	if end < start {
		return tod >= start || tod <= end
	}

	return tod >= start && tod < end
}

// Wraps reports whether the window crosses midnight.
func (w ScheduleWindow) Wraps() bool {
	return w.End.SecondOfDay() < w.Start.SecondOfDay()
}
