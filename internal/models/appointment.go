package models

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no_show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

var validStatuses = map[AppointmentStatus]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true, StatusRescheduled: true,
}

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	return validStatuses[s]
}

// Appointment is a booking of a professional's time for a contact.
// ScheduledEnd is derived from ScheduledStart and DurationMinutes on every
// save so range queries can run against an indexed column.
type Appointment struct {
	BaseModel
	ClinicID         string            `gorm:"size:36;not null;index:idx_appointments_clinic_start,priority:1" json:"clinicId"`
	ContactID        string            `gorm:"size:36;index" json:"contactId"`
	ContactName      string            `gorm:"size:255" json:"contactName"`
	ProfessionalID   string            `gorm:"size:36;index" json:"professionalId"`
	ProfessionalName string            `gorm:"size:255" json:"professionalName"`
	ScheduledStart   time.Time         `gorm:"not null;index:idx_appointments_clinic_start,priority:2" json:"scheduledStart"`
	ScheduledEnd     time.Time         `gorm:"not null;index" json:"scheduledEnd"`
	DurationMinutes  int               `gorm:"not null;default:60" json:"durationMinutes"`
	Status           AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Specialty        string            `gorm:"size:100" json:"specialty"`
	Notes            string            `gorm:"type:text" json:"notes"`
}

// Duration returns the booked length.
func (a *Appointment) Duration() time.Duration {
	return time.Duration(a.DurationMinutes) * time.Minute
}

// End returns the exclusive end of the occupied interval.
func (a *Appointment) End() time.Time {
	return a.ScheduledStart.Add(a.Duration())
}

// OccupiesTime is false for cancelled appointments.
func (a *Appointment) OccupiesTime() bool {
	return a.Status != StatusCancelled
}

// BeforeSave keeps ScheduledEnd in sync with the start and duration.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	a.ScheduledStart = a.ScheduledStart.UTC()
	a.ScheduledEnd = a.End()
	return nil
}
