package models

import "time"

// Appointment is one scheduled engagement between a client and the business.
// Date is "YYYY-MM-DD" and StartTime/EndTime are 24-hour "HH:MM" clocks, kept as
// strings because rows may come from sources with different date layouts.
type Appointment struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`

	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`

	ServiceID    string  `json:"service_id"`
	ServiceName  string  `json:"service_name"`
	ServicePrice float64 `json:"service_price,omitempty"`

	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	BookingSource string `json:"booking_source,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentPatch carries the fields an update may change. Nil means unchanged.
type AppointmentPatch struct {
	ClientName   *string  `json:"client_name,omitempty"`
	ServiceID    *string  `json:"service_id,omitempty"`
	ServiceName  *string  `json:"service_name,omitempty"`
	ServicePrice *float64 `json:"service_price,omitempty"`
	Date         *string  `json:"date,omitempty"`
	StartTime    *string  `json:"start_time,omitempty"`
	EndTime      *string  `json:"end_time,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

func (p AppointmentPatch) Apply(ap *Appointment) {
	if p.ClientName != nil {
		ap.ClientName = *p.ClientName
	}
	if p.ServiceID != nil {
		ap.ServiceID = *p.ServiceID
	}
	if p.ServiceName != nil {
		ap.ServiceName = *p.ServiceName
	}
	if p.ServicePrice != nil {
		ap.ServicePrice = *p.ServicePrice
	}
	if p.Date != nil {
		ap.Date = *p.Date
	}
	if p.StartTime != nil {
		ap.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		ap.EndTime = *p.EndTime
	}
	if p.Status != nil {
		ap.Status = *p.Status
	}
	if p.Notes != nil {
		ap.Notes = *p.Notes
	}
}
