package scheduling

import (
	"errors"
	"fmt"
)

// Error classes surfaced by the engine. Handlers map them to HTTP statuses
// with errors.Is; anything else is an internal failure.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("scheduling conflict")

	ErrAppointmentNotFound   = fmt.Errorf("appointment %w", ErrNotFound)
	ErrClinicNotFound        = fmt.Errorf("clinic %w", ErrNotFound)
	ErrNoActiveProfessionals = fmt.Errorf("%w: clinic has no active professionals", ErrPreconditionFailed)
)

// InputError describes a rejected request field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError is returned by write operations when the requested interval
// is not available. It carries the same payload CheckAvailability returns.
type ConflictError struct {
	Availability AvailabilityResponse
}

func (e *ConflictError) Error() string {
	if d := e.Availability.ConflictDetails; d != nil {
		if d.ID == PastTimeConflictID {
			return "scheduling conflict: start time is not in the future"
		}
		return fmt.Sprintf("scheduling conflict with appointment %s", d.ID)
	}
	return ErrConflict.Error()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
