package scheduling

import (
	"context"
	"fmt"

	"clinic-scheduling-server/internal/models"
)

// CheckAvailability reports whether the requested interval is free. A
// collision is a normal result, not an error; errors are reserved for bad
// input and storage failures.
func (s *Service) CheckAvailability(ctx context.Context, clinicID string, req AvailabilityRequest) (*AvailabilityResponse, error) {
	cs, err := s.settings(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	start, err := parseInstant("startTime", req.StartTime, cs.loc)
	if err != nil {
		return nil, err
	}
	end, err := parseInstant("endTime", req.EndTime, cs.loc)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, invalidInput("endTime", "must be after startTime")
	}

	return s.checkInterval(ctx, clinicID, NewInterval(start, end), req.ExcludeAppointmentID, req.ProfessionalID, true)
}

// checkInterval tests candidate against stored bookings. With
// requireFuture, a candidate not starting after now is a past-time conflict.
func (s *Service) checkInterval(ctx context.Context, clinicID string, candidate Interval, excludeID, professionalID string, requireFuture bool) (*AvailabilityResponse, error) {
	if requireFuture && !candidate.Start.After(s.now()) {
		return pastTimeConflict(), nil
	}

	appointments, err := s.appointments.FindByDateRange(ctx, clinicID, candidate.Start, candidate.End())
	if err != nil {
		return nil, fmt.Errorf("find appointments in %s: %w", candidate, err)
	}

	if hit := FirstConflict(appointments, candidate, excludeID, professionalID); hit != nil {
		return appointmentConflict(hit), nil
	}
	return &AvailabilityResponse{Available: true}, nil
}

// FirstConflict returns the first appointment, in slice order, that
// occupies time overlapping candidate. excludeID skips the appointment
// being edited; a non-empty professionalID restricts the check to that
// professional's bookings.
func FirstConflict(appointments []models.Appointment, candidate Interval, excludeID, professionalID string) *models.Appointment {
	for i := range appointments {
		a := &appointments[i]
		if !a.OccupiesTime() {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if professionalID != "" && a.ProfessionalID != professionalID {
			continue
		}
		if AppointmentInterval(a).Overlaps(candidate) {
			return a
		}
	}
	return nil
}

// BookingLabel is the display label of a booking: professional, then patient.
func BookingLabel(a *models.Appointment) string {
	professional := a.ProfessionalName
	if professional == "" {
		professional = "Unassigned"
	}
	patient := a.ContactName
	if patient == "" {
		patient = "Unknown patient"
	}
	return professional + " — " + patient
}

func pastTimeConflict() *AvailabilityResponse {
	return &AvailabilityResponse{
		Available:    false,
		Conflict:     true,
		ConflictType: ConflictTypeAppointment,
		ConflictDetails: &ConflictDetails{
			ID:    PastTimeConflictID,
			Label: "Start time must be in the future",
		},
	}
}

func appointmentConflict(a *models.Appointment) *AvailabilityResponse {
	start := a.ScheduledStart
	end := a.End()
	return &AvailabilityResponse{
		Available:    false,
		Conflict:     true,
		ConflictType: ConflictTypeAppointment,
		ConflictDetails: &ConflictDetails{
			ID:    a.ID,
			Label: BookingLabel(a),
			Start: &start,
			End:   &end,
		},
	}
}
