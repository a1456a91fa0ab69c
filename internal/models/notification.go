package models

import "time"

const (
	NotificationNewAppointment       = "new_appointment"
	NotificationAppointmentChanged   = "appointment_changed"
	NotificationAppointmentCancelled = "appointment_cancelled"
)

type AppNotification struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ClientName    string    `json:"client_name"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	IsRead        bool      `json:"is_read"`
}
