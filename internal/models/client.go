package models

// Client is referenced by id from appointments. LastVisit and
// UpcomingAppointmentID are derived from the appointment collection.
type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`

	LastVisit             string `json:"last_visit,omitempty"`
	UpcomingAppointmentID string `json:"upcoming_appointment_id,omitempty"`
}
