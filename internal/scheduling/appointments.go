package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic-scheduling-server/internal/models"
)

const defaultPageLimit = 20

// CreateAppointment books a new appointment. The availability check and the
// insert run under the booking guard for (professional, day), so two
// concurrent requests for the same time cannot both succeed.
func (s *Service) CreateAppointment(ctx context.Context, clinicID string, in AppointmentInput) (*models.Appointment, error) {
	cs, err := s.settings(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if in.ContactID == "" {
		return nil, invalidInput("contactId", "is required")
	}
	if in.ProfessionalID == "" {
		return nil, invalidInput("professionalId", "is required")
	}
	start, err := parseInstant("scheduledStart", in.ScheduledStart, cs.loc)
	if err != nil {
		return nil, err
	}
	duration := in.DurationMinutes
	if duration == 0 {
		duration = cs.slotMinutes
	}
	if duration < 0 {
		return nil, invalidInput("durationMinutes", "must be positive")
	}

	professional, err := s.activeProfessional(ctx, clinicID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ClinicID:         clinicID,
		ContactID:        in.ContactID,
		ContactName:      in.ContactName,
		ProfessionalID:   professional.ID,
		ProfessionalName: professional.Name,
		ScheduledStart:   start.UTC(),
		DurationMinutes:  duration,
		Status:           models.StatusScheduled,
		Specialty:        in.Specialty,
		Notes:            in.Notes,
	}
	if appt.Specialty == "" {
		appt.Specialty = professional.Specialty
	}

	if err := s.bookGuarded(ctx, cs, appt, "", true, s.appointments.Create); err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.String("clinicID", clinicID),
		zap.String("appointmentID", appt.ID),
		zap.String("professionalID", appt.ProfessionalID),
		zap.Time("start", appt.ScheduledStart),
	)
	s.notifyCalendar(ctx, ActionCreated, appt)
	return appt, nil
}

// UpdateAppointment edits an appointment. Moving it in time or to another
// professional re-runs the guarded availability check, excluding itself.
func (s *Service) UpdateAppointment(ctx context.Context, clinicID, id string, in AppointmentInput) (*models.Appointment, error) {
	cs, err := s.settings(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	appt, err := s.appointments.FindByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	moved, startMoved := false, false
	if in.ScheduledStart != "" {
		start, err := parseInstant("scheduledStart", in.ScheduledStart, cs.loc)
		if err != nil {
			return nil, err
		}
		if !start.Equal(appt.ScheduledStart) {
			appt.ScheduledStart = start.UTC()
			appt.Status = models.StatusRescheduled
			moved, startMoved = true, true
		}
	}
	if in.DurationMinutes < 0 {
		return nil, invalidInput("durationMinutes", "must be positive")
	}
	if in.DurationMinutes > 0 && in.DurationMinutes != appt.DurationMinutes {
		appt.DurationMinutes = in.DurationMinutes
		moved = true
	}
	if in.ProfessionalID != "" && in.ProfessionalID != appt.ProfessionalID {
		professional, err := s.activeProfessional(ctx, clinicID, in.ProfessionalID)
		if err != nil {
			return nil, err
		}
		appt.ProfessionalID = professional.ID
		appt.ProfessionalName = professional.Name
		moved = true
	}
	if in.ContactID != "" {
		appt.ContactID = in.ContactID
	}
	if in.ContactName != "" {
		appt.ContactName = in.ContactName
	}
	if in.Specialty != "" {
		appt.Specialty = in.Specialty
	}
	if in.Notes != "" {
		appt.Notes = in.Notes
	}

	// An appointment already under way may be extended or handed over
	// without tripping the past-time rule; only a new start must be future.
	if moved && appt.OccupiesTime() {
		err = s.bookGuarded(ctx, cs, appt, appt.ID, startMoved, s.appointments.Update)
	} else {
		err = s.appointments.Update(ctx, appt)
	}
	if err != nil {
		return nil, err
	}

	s.notifyCalendar(ctx, ActionUpdated, appt)
	return appt, nil
}

// UpdateAppointmentStatus is a status-only transition. Cancelling frees the
// interval and is never checked. Leaving cancelled makes the interval occupy
// time again, so that direction is re-checked under the booking guard.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, clinicID, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if clinicID == "" {
		return nil, invalidInput("clinicId", "is required")
	}
	if !status.Valid() {
		return nil, invalidInput("status", "%q is not a valid appointment status", status)
	}
	current, err := s.appointments.FindByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	var updated *models.Appointment
	write := func(ctx context.Context, a *models.Appointment) error {
		res, err := s.appointments.UpdateStatus(ctx, clinicID, a.ID, status)
		if err != nil {
			return err
		}
		if res == nil {
			return ErrAppointmentNotFound
		}
		updated = res
		return nil
	}

	if !current.OccupiesTime() && status != models.StatusCancelled {
		cs, err := s.settings(ctx, clinicID)
		if err != nil {
			return nil, err
		}
		err = s.bookGuarded(ctx, cs, current, current.ID, false, write)
		if err != nil {
			return nil, err
		}
	} else if err := write(ctx, current); err != nil {
		return nil, err
	}

	s.notifyCalendar(ctx, ActionStatusChanged, updated)
	return updated, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, clinicID, id string) error {
	if clinicID == "" {
		return invalidInput("clinicId", "is required")
	}
	appt, err := s.appointments.FindByID(ctx, clinicID, id)
	if err != nil {
		return err
	}
	deleted, err := s.appointments.Delete(ctx, clinicID, id)
	if err != nil {
		return fmt.Errorf("delete appointment %s: %w", id, err)
	}
	if !deleted {
		return ErrAppointmentNotFound
	}
	s.notifyCalendar(ctx, ActionDeleted, appt)
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, clinicID, id string) (*models.Appointment, error) {
	if clinicID == "" {
		return nil, invalidInput("clinicId", "is required")
	}
	return s.appointments.FindByID(ctx, clinicID, id)
}

// ListAppointments returns one page of the clinic's appointments.
func (s *Service) ListAppointments(ctx context.Context, clinicID string, q ListQuery) (*AppointmentPage, error) {
	cs, err := s.settings(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, invalidInput("status", "%q is not a valid appointment status", q.Status)
	}

	filters := AppointmentFilters{
		Status:         q.Status,
		ContactID:      q.ContactID,
		ProfessionalID: q.ProfessionalID,
	}
	if q.Date != "" {
		day, err := parseDate("date", q.Date, cs.loc)
		if err != nil {
			return nil, err
		}
		from := day
		to := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filters.From = &from
		filters.To = &to
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	items, total, err := s.appointments.FindAllPaginated(ctx, clinicID, filters, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if items == nil {
		items = []models.Appointment{}
	}
	return &AppointmentPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// AppointmentsForContact returns a contact's history in the clinic.
func (s *Service) AppointmentsForContact(ctx context.Context, clinicID, contactID string) ([]models.Appointment, error) {
	if clinicID == "" {
		return nil, invalidInput("clinicId", "is required")
	}
	if contactID == "" {
		return nil, invalidInput("contactId", "is required")
	}
	return s.appointments.FindByContact(ctx, clinicID, contactID)
}

// bookGuarded re-checks availability for appt and then persists it with
// write, both inside the booking guard. requireFuture applies the past-time
// rule to appt's start.
func (s *Service) bookGuarded(ctx context.Context, cs clinicSettings, appt *models.Appointment, excludeID string, requireFuture bool, write func(context.Context, *models.Appointment) error) error {
	key := BookingKey{
		ClinicID:       appt.ClinicID,
		ProfessionalID: appt.ProfessionalID,
		Day:            appt.ScheduledStart.In(cs.loc).Format("2006-01-02"),
	}
	return s.guard.Serialize(ctx, key, func(ctx context.Context) error {
		res, err := s.checkInterval(ctx, appt.ClinicID, AppointmentInterval(appt), excludeID, appt.ProfessionalID, requireFuture)
		if err != nil {
			return err
		}
		if !res.Available {
			return &ConflictError{Availability: *res}
		}
		return write(ctx, appt)
	})
}

func (s *Service) activeProfessional(ctx context.Context, clinicID, professionalID string) (models.Staff, error) {
	roster, err := s.staff.GetActiveProfessionalRoster(ctx, clinicID)
	if err != nil {
		return models.Staff{}, fmt.Errorf("load active roster: %w", err)
	}
	for _, st := range roster {
		if st.ID == professionalID {
			return st, nil
		}
	}
	return models.Staff{}, invalidInput("professionalId", "%s is not an active professional of this clinic", professionalID)
}
