package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic-scheduling-server/internal/models"
)

// ReassignPolicy decides how ReassignOrphanedAppointments picks a target
// when the caller does not name one.
type ReassignPolicy string

const (
	ReassignFirstActive ReassignPolicy = "first_active"
	ReassignExplicit    ReassignPolicy = "explicit"
)

// Options configures defaults applied when a clinic has no settings of its own.
type Options struct {
	DefaultTimezone     string
	DefaultWorkdayStart string
	DefaultWorkdayEnd   string
	DefaultSlotMinutes  int
	ReassignPolicy      ReassignPolicy
	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultTimezone == "" {
		o.DefaultTimezone = "UTC"
	}
	if o.DefaultWorkdayStart == "" {
		o.DefaultWorkdayStart = "08:00"
	}
	if o.DefaultWorkdayEnd == "" {
		o.DefaultWorkdayEnd = "18:00"
	}
	if o.DefaultSlotMinutes <= 0 {
		o.DefaultSlotMinutes = 60
	}
	if o.ReassignPolicy == "" {
		o.ReassignPolicy = ReassignFirstActive
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service is the scheduling engine. It holds no per-request state; every
// call reads what it needs through the repositories.
type Service struct {
	appointments AppointmentRepository
	staff        StaffRepository
	clinics      ClinicRepository
	guard        BookingGuard
	calendar     CalendarSync
	logger       *zap.Logger
	opts         Options
}

// NewService wires the engine. calendar may be nil to disable sync.
func NewService(
	appointments AppointmentRepository,
	staff StaffRepository,
	clinics ClinicRepository,
	guard BookingGuard,
	calendar CalendarSync,
	logger *zap.Logger,
	opts Options,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		appointments: appointments,
		staff:        staff,
		clinics:      clinics,
		guard:        guard,
		calendar:     calendar,
		logger:       logger.Named("scheduling"),
		opts:         opts.withDefaults(),
	}
}

// clinicSettings is the resolved time configuration of one clinic.
type clinicSettings struct {
	loc          *time.Location
	workdayStart string
	workdayEnd   string
	slotMinutes  int
}

func (s *Service) settings(ctx context.Context, clinicID string) (clinicSettings, error) {
	if clinicID == "" {
		return clinicSettings{}, invalidInput("clinicId", "is required")
	}

	cs := clinicSettings{
		workdayStart: s.opts.DefaultWorkdayStart,
		workdayEnd:   s.opts.DefaultWorkdayEnd,
		slotMinutes:  s.opts.DefaultSlotMinutes,
	}
	tz := s.opts.DefaultTimezone

	clinic, err := s.clinics.GetClinic(ctx, clinicID)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("clinic has no settings, using defaults", zap.String("clinicID", clinicID))
	case err != nil:
		return clinicSettings{}, fmt.Errorf("load clinic %s: %w", clinicID, err)
	default:
		if clinic.Timezone != "" {
			tz = clinic.Timezone
		}
		if clinic.WorkdayStart != "" {
			cs.workdayStart = clinic.WorkdayStart
		}
		if clinic.WorkdayEnd != "" {
			cs.workdayEnd = clinic.WorkdayEnd
		}
		if clinic.DefaultSlotMinutes > 0 {
			cs.slotMinutes = clinic.DefaultSlotMinutes
		}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return clinicSettings{}, fmt.Errorf("clinic %s timezone %q: %w", clinicID, tz, err)
	}
	cs.loc = loc
	return cs, nil
}

func (s *Service) now() time.Time {
	return s.opts.Now()
}

// notifyCalendar hands a committed change to the calendar sync. Failures
// are logged and never reach the caller.
func (s *Service) notifyCalendar(ctx context.Context, action string, a *models.Appointment) {
	if s.calendar == nil {
		return
	}
	if err := s.calendar.AppointmentChanged(ctx, action, a); err != nil {
		s.logger.Warn("calendar sync dispatch failed",
			zap.String("action", action),
			zap.String("appointmentID", a.ID),
			zap.String("clinicID", a.ClinicID),
			zap.Error(err),
		)
	}
}
