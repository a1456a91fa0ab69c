package appointment

import "fmt"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsBlocking reports whether an appointment in this status occupies its time
// range. Completed appointments still hold their historical slot and pending
// ones are a tentative hold.
func (s Status) IsBlocking() bool {
	return s != StatusCancelled
}

// IsTerminal is true for statuses that no longer count as upcoming work.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// InitialStatus is the status of a freshly booked appointment.
func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Booking sources
// ===============================

const (
	BookingSourceManual  = "manual"
	BookingSourceOnline  = "online"
	BookingSourceRequest = "booking_request"
)
