package scheduling

import (
	"time"

	"clinic-scheduling-server/internal/models"
)

// ConflictType classifies what an interval collided with.
type ConflictType string

const (
	ConflictTypeAppointment ConflictType = "appointment"
)

// PastTimeConflictID marks the conflict reported for candidates that do not
// start in the future.
const PastTimeConflictID = "past-time"

// AvailabilityRequest asks whether [StartTime, EndTime) is free.
// ProfessionalName is display metadata only; narrowing uses ProfessionalID.
type AvailabilityRequest struct {
	StartTime            string `json:"startTime" binding:"required"`
	EndTime              string `json:"endTime" binding:"required"`
	ExcludeAppointmentID string `json:"excludeAppointmentId,omitempty" binding:"omitempty,uuid"`
	ProfessionalID       string `json:"professionalId,omitempty" binding:"omitempty,uuid"`
	ProfessionalName     string `json:"professionalName,omitempty"`
}

// ConflictDetails identifies the booking a candidate collided with.
type ConflictDetails struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type AvailabilityResponse struct {
	Available       bool             `json:"available"`
	Conflict        bool             `json:"conflict"`
	ConflictType    ConflictType     `json:"conflictType,omitempty"`
	ConflictDetails *ConflictDetails `json:"conflictDetails,omitempty"`
}

// WorkingHours is a clinic-local "HH:MM" window.
type WorkingHours struct {
	Start string `json:"start" binding:"omitempty,datetime=15:04"`
	End   string `json:"end" binding:"omitempty,datetime=15:04"`
}

type TimeSlotRequest struct {
	Date            string        `json:"date" binding:"required,datetime=2006-01-02"`
	DurationMinutes int           `json:"durationMinutes,omitempty" binding:"omitempty,min=1,max=1440"`
	WorkingHours    *WorkingHours `json:"workingHours,omitempty"`
	ProfessionalID  string        `json:"professionalId,omitempty" binding:"omitempty,uuid"`
}

// Slot is an open interval of exactly the requested duration.
type Slot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
}

// BusyBlock is time already occupied by a non-cancelled appointment.
type BusyBlock struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

type TimeSlotResponse struct {
	Date            string       `json:"date"`
	DurationMinutes int          `json:"durationMinutes"`
	WorkingHours    WorkingHours `json:"workingHours"`
	Timezone        string       `json:"timezone"`
	AvailableSlots  []Slot       `json:"availableSlots"`
	BusyBlocks      []BusyBlock  `json:"busyBlocks"`
}

// AppointmentInput is the writable part of an appointment. On update, zero
// values leave the stored field untouched.
type AppointmentInput struct {
	ContactID       string `json:"contactId" binding:"omitempty,uuid"`
	ContactName     string `json:"contactName" binding:"omitempty,max=255"`
	ProfessionalID  string `json:"professionalId" binding:"omitempty,uuid"`
	ScheduledStart  string `json:"scheduledStart"`
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=1,max=1440"`
	Specialty       string `json:"specialty" binding:"omitempty,max=100"`
	Notes           string `json:"notes"`
}

// ListQuery filters appointment listings. Date is a clinic-local
// YYYY-MM-DD day.
type ListQuery struct {
	Status         models.AppointmentStatus `form:"status"`
	Date           string                   `form:"date" binding:"omitempty,datetime=2006-01-02"`
	ContactID      string                   `form:"contactId" binding:"omitempty,uuid"`
	ProfessionalID string                   `form:"professionalId" binding:"omitempty,uuid"`
	Page           int                      `form:"page" binding:"omitempty,min=1"`
	Limit          int                      `form:"limit" binding:"omitempty,min=1,max=200"`
}

type AppointmentPage struct {
	Items []models.Appointment `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ReassignOptions lets an operator pick the reassignment target explicitly.
type ReassignOptions struct {
	TargetProfessionalID string `json:"targetProfessionalId,omitempty" binding:"omitempty,uuid"`
}

type ReassignResult struct {
	UpdatedCount         int64  `json:"updatedCount"`
	Message              string `json:"message"`
	TargetProfessionalID string `json:"targetProfessionalId,omitempty"`
}
