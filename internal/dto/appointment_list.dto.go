package dto

import "github.com/BruksfildServices01/agenda-engine/internal/models"

// AppointmentListDTO is an appointment as listed to the business, with the
// resolved instant when its date and time parse.
type AppointmentListDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	ServiceName string `json:"service_name"`
	Timestamp   *int64 `json:"timestamp,omitempty"`
}

func NewAppointmentListDTO(ap models.Appointment, ts *int64) AppointmentListDTO {
	return AppointmentListDTO{
		ID:          ap.ID,
		Date:        ap.Date,
		StartTime:   ap.StartTime,
		EndTime:     ap.EndTime,
		Status:      ap.Status,
		ClientID:    ap.ClientID,
		ClientName:  ap.ClientName,
		ServiceName: ap.ServiceName,
		Timestamp:   ts,
	}
}

// ClientAppointmentsDTO is a client's history with the summary derived from it.
type ClientAppointmentsDTO struct {
	Client       models.Client        `json:"client"`
	Appointments []AppointmentListDTO `json:"appointments"`
}
