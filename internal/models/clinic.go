package models

import (
	"time"
)

// Clinic is the tenant boundary. It carries the timezone and default
// working hours used to interpret local dates and times.
type Clinic struct {
	BaseModel
	Name               string `gorm:"size:255;not null" json:"name"`
	Timezone           string `gorm:"size:64;default:'UTC'" json:"timezone"`
	WorkdayStart       string `gorm:"size:5;default:'08:00'" json:"workdayStart"`
	WorkdayEnd         string `gorm:"size:5;default:'18:00'" json:"workdayEnd"`
	DefaultSlotMinutes int    `gorm:"default:60" json:"defaultSlotMinutes"`
}

// Location resolves the clinic timezone.
func (c *Clinic) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ProfessionalDayLock is a lock row serializing bookings for one
// professional on one clinic-local day.
type ProfessionalDayLock struct {
	ClinicID       string    `gorm:"primaryKey;size:36"`
	ProfessionalID string    `gorm:"primaryKey;size:36"`
	Day            string    `gorm:"primaryKey;size:10"`
	UpdatedAt      time.Time
}
