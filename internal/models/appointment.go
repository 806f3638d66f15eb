package models

import "time"

type Appointment struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`

	PatientID      string `gorm:"size:64;index;not null" json:"patient_id"`
	ProfessionalID string `gorm:"size:64;index;not null" json:"professional_id"`

	// Kept as entered by the booking flow: YYYY-MM-DD and HH:MM.
	Date string `gorm:"size:10;not null" json:"date"`
	Time string `gorm:"size:5;not null" json:"time"`

	Status   string  `gorm:"size:20;default:'pending'" json:"status"`
	MeetLink *string `gorm:"size:255" json:"meet_link"`

	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
