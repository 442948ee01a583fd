package scheduling

import (
	"context"
	"time"

	"clinic-scheduling-server/internal/models"
)

// AppointmentFilters narrows FindAll queries. From/To bound ScheduledStart.
type AppointmentFilters struct {
	Status         models.AppointmentStatus
	ContactID      string
	ProfessionalID string
	From           *time.Time
	To             *time.Time
}

// AppointmentRepository is the storage contract the engine needs. Every
// call is scoped to one clinic. Multi-row reads are ordered by
// ScheduledStart ascending, then ID, so conflict tie-breaks are stable.
type AppointmentRepository interface {
	// FindByDateRange returns appointments whose stored interval intersects
	// the closed range [start, end], regardless of status.
	FindByDateRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error)
	FindByID(ctx context.Context, clinicID, id string) (*models.Appointment, error)
	FindByContact(ctx context.Context, clinicID, contactID string) ([]models.Appointment, error)
	FindAll(ctx context.Context, clinicID string, filters AppointmentFilters) ([]models.Appointment, error)
	FindAllPaginated(ctx context.Context, clinicID string, filters AppointmentFilters, limit, offset int) ([]models.Appointment, int64, error)
	Create(ctx context.Context, a *models.Appointment) error
	Update(ctx context.Context, a *models.Appointment) error
	UpdateStatus(ctx context.Context, clinicID, id string, status models.AppointmentStatus) (*models.Appointment, error)
	Delete(ctx context.Context, clinicID, id string) (bool, error)
	ReassignProfessional(ctx context.Context, clinicID string, ids []string, professionalID, professionalName string) (int64, error)
}

// StaffRepository exposes the clinic roster.
type StaffRepository interface {
	// GetActiveProfessionalRoster returns active professionals in their
	// natural order (creation time, then ID).
	GetActiveProfessionalRoster(ctx context.Context, clinicID string) ([]models.Staff, error)
}

type ClinicRepository interface {
	GetClinic(ctx context.Context, clinicID string) (*models.Clinic, error)
}

// BookingKey identifies the unit of booking exclusivity: one professional
// on one clinic-local day.
type BookingKey struct {
	ClinicID       string
	ProfessionalID string
	Day            string
}

// BookingGuard runs fn so that no two calls with the same key interleave.
// Repository calls made inside fn must use the ctx passed to it.
type BookingGuard interface {
	Serialize(ctx context.Context, key BookingKey, fn func(ctx context.Context) error) error
}

// CalendarSync receives appointment changes after they are committed.
// Implementations must not block on the external calendar.
type CalendarSync interface {
	AppointmentChanged(ctx context.Context, action string, a *models.Appointment) error
}

// Calendar sync actions.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
	ActionReassigned    = "reassigned"
)
