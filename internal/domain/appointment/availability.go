package appointment

import "github.com/BruksfildServices01/agenda-engine/internal/timeutil"

const (
	DefaultStartHour       = 9
	DefaultEndHour         = 18
	DefaultStepMinutes     = 30
	DefaultServiceDuration = 60
)

// BusinessHours is the [StartHour:00, EndHour:00) window slots are drawn from.
type BusinessHours struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{StartHour: DefaultStartHour, EndHour: DefaultEndHour}
}

type AvailabilityInput struct {
	BusinessID string
	Date       string
	ServiceID  string
}

// Slot is a candidate start time annotated with availability. Never persisted.
type Slot struct {
	Time                     string `json:"time"`
	Available                bool   `json:"available"`
	ConflictingAppointmentID string `json:"conflicting_appointment_id,omitempty"`
}

type AvailabilityResult struct {
	Date            string `json:"date"`
	ServiceDuration int    `json:"service_duration"`
	Slots           []Slot `json:"slots"`
}

// GenerateSlots lists candidate start times in [StartHour:00, EndHour:00)
// advancing by stepMinutes. A step that does not divide 60 still never yields
// a slot at or after EndHour:00.
func GenerateSlots(hours BusinessHours, stepMinutes int) []string {
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}

	start := clampHour(hours.StartHour) * 60
	end := clampHour(hours.EndHour) * 60
	if end <= start {
		return []string{}
	}

	slots := make([]string, 0, (end-start+stepMinutes-1)/stepMinutes)
	for m := start; m < end; m += stepMinutes {
		slots = append(slots, timeutil.FormatMinutes(m))
	}
	return slots
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 24 {
		return 24
	}
	return h
}
