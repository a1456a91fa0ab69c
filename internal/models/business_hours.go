package models

import "time"

// BusinessHours bounds the slot grid of a business: [StartHour:00, EndHour:00).
type BusinessHours struct {
	BusinessID string `gorm:"primaryKey;size:64" json:"business_id"`

	StartHour   int `json:"start_hour"`
	EndHour     int `json:"end_hour"`
	StepMinutes int `json:"step_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
