package scheduling

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"clinic-scheduling-server/internal/models"
)

// ReassignOrphanedAppointments moves appointments whose professional is no
// longer on the clinic's active roster to a roster member. With no active
// professional there is no valid target, so the call fails.
func (s *Service) ReassignOrphanedAppointments(ctx context.Context, clinicID string, opts ReassignOptions) (*ReassignResult, error) {
	if clinicID == "" {
		return nil, invalidInput("clinicId", "is required")
	}

	appointments, err := s.appointments.FindAll(ctx, clinicID, AppointmentFilters{})
	if err != nil {
		return nil, fmt.Errorf("list clinic appointments: %w", err)
	}
	roster, err := s.staff.GetActiveProfessionalRoster(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("load active roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, ErrNoActiveProfessionals
	}

	active := make(map[string]bool, len(roster))
	for _, st := range roster {
		active[st.ID] = true
	}

	var orphanIDs []string
	for _, a := range appointments {
		if !active[a.ProfessionalID] {
			orphanIDs = append(orphanIDs, a.ID)
		}
	}
	if len(orphanIDs) == 0 {
		return &ReassignResult{
			UpdatedCount: 0,
			Message:      "No orphaned appointments found; every appointment belongs to an active professional",
		}, nil
	}

	target, err := s.reassignTarget(roster, opts)
	if err != nil {
		return nil, err
	}

	updated, err := s.appointments.ReassignProfessional(ctx, clinicID, orphanIDs, target.ID, target.Name)
	if err != nil {
		return nil, fmt.Errorf("reassign %d appointments: %w", len(orphanIDs), err)
	}

	s.logger.Info("reassigned orphaned appointments",
		zap.String("clinicID", clinicID),
		zap.String("targetProfessionalID", target.ID),
		zap.Int64("updated", updated),
	)
	for _, a := range appointments {
		if !active[a.ProfessionalID] {
			a.ProfessionalID = target.ID
			a.ProfessionalName = target.Name
			s.notifyCalendar(ctx, ActionReassigned, &a)
		}
	}

	return &ReassignResult{
		UpdatedCount:         updated,
		Message:              fmt.Sprintf("Reassigned %d appointment(s) to %s", updated, target.Name),
		TargetProfessionalID: target.ID,
	}, nil
}

func (s *Service) reassignTarget(roster []models.Staff, opts ReassignOptions) (models.Staff, error) {
	if opts.TargetProfessionalID != "" {
		for _, st := range roster {
			if st.ID == opts.TargetProfessionalID {
				return st, nil
			}
		}
		return models.Staff{}, fmt.Errorf("%w: professional %s is not active in this clinic", ErrPreconditionFailed, opts.TargetProfessionalID)
	}
	if s.opts.ReassignPolicy == ReassignExplicit {
		return models.Staff{}, invalidInput("targetProfessionalId", "is required by the reassignment policy")
	}
	return roster[0], nil
}
