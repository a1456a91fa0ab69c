package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// ===============================
// Domain helpers
// ===============================

// Span returns the appointment's [start, end) in minutes since midnight.
func Span(ap models.Appointment) (int, int, error) {
	start, err := timeutil.ToMinutes(ap.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeutil.ToMinutes(ap.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Validate checks the invariants every stored appointment must hold.
func Validate(ap models.Appointment) error {
	if !Status(ap.Status).IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, ap.Status)
	}
	if _, err := timeutil.ParseISODate(ap.Date, nil); err != nil {
		return err
	}

	start, end, err := Span(ap)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, ap.StartTime, ap.EndTime)
	}
	return nil
}

// EndTimeFor returns the "HH:MM" end of a booking starting at start and lasting
// durationMin minutes. Bookings may not spill past midnight.
func EndTimeFor(start string, durationMin int) (string, error) {
	startMin, err := timeutil.ToMinutes(start)
	if err != nil {
		return "", err
	}
	if durationMin <= 0 {
		return "", fmt.Errorf("%w: duration %d", ErrInvalidTimeRange, durationMin)
	}
	end := startMin + durationMin
	if end > 24*60-1 {
		return "", fmt.Errorf("%w: ends after midnight", ErrInvalidTimeRange)
	}
	return timeutil.FormatMinutes(end), nil
}
