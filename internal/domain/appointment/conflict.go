package appointment

import "github.com/BruksfildServices01/agenda-engine/internal/models"

// SlotCheck is the verdict for one candidate slot.
type SlotCheck struct {
	Available     bool
	ConflictingID string
}

// IsSlotAvailable decides whether [slotStart, slotStart+duration) is free.
//
// An appointment blocks the slot iff slotStart < apptEnd && slotEnd > apptStart.
// Cancelled appointments never block and appointments whose clock times do
// not parse are left out of the blocking set. When several appointments
// overlap, the first in iteration order is reported.
func IsSlotAvailable(slotStart, duration int, appts []models.Appointment) SlotCheck {
	if id, ok := FindConflict(slotStart, slotStart+duration, appts, ""); ok {
		return SlotCheck{Available: false, ConflictingID: id}
	}
	return SlotCheck{Available: true}
}

// FindConflict returns the first blocking appointment overlapping [start, end),
// skipping excludeID.
func FindConflict(start, end int, appts []models.Appointment, excludeID string) (string, bool) {
	for _, ap := range appts {
		if excludeID != "" && ap.ID == excludeID {
			continue
		}
		if !Status(ap.Status).IsBlocking() {
			continue
		}

		apStart, apEnd, err := Span(ap)
		if err != nil {
			continue
		}

		if start < apEnd && end > apStart {
			return ap.ID, true
		}
	}
	return "", false
}
