package timeutil

import "time"

const DefaultTimezone = "America/Sao_Paulo"

// Clock returns the current instant. Injected so "today" is testable.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NowIn(clock Clock, loc *time.Location) time.Time {
	if clock == nil {
		clock = SystemClock
	}
	return clock().In(loc)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
