// Package memory is an in-process implementation of the scheduling
// storage contract, used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
)

// Store keeps appointments, staff and clinics in maps. All reads return
// copies so callers cannot mutate stored records.
type Store struct {
	mu           sync.RWMutex
	appointments map[string]models.Appointment
	staff        []models.Staff
	clinics      map[string]models.Clinic
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		appointments: make(map[string]models.Appointment),
		clinics:      make(map[string]models.Clinic),
		now:          time.Now,
	}
}

// AddClinic registers clinic settings, assigning an ID when missing.
func (s *Store) AddClinic(c models.Clinic) models.Clinic {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	s.clinics[c.ID] = c
	return c
}

// AddStaff appends a staff member; roster order is insertion order.
func (s *Store) AddStaff(st models.Staff) models.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = s.now()
	}
	s.staff = append(s.staff, st)
	return st
}

// SetStaffActive flips a staff member's active flag.
func (s *Store) SetStaffActive(id string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff {
		if s.staff[i].ID == id {
			s.staff[i].Active = active
			return true
		}
	}
	return false
}

func (s *Store) GetClinic(_ context.Context, clinicID string) (*models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clinics[clinicID]
	if !ok {
		return nil, scheduling.ErrClinicNotFound
	}
	return &c, nil
}

func (s *Store) GetActiveProfessionalRoster(_ context.Context, clinicID string) ([]models.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roster []models.Staff
	for _, st := range s.staff {
		if st.ClinicID == clinicID && st.Active && st.IsProfessional {
			roster = append(roster, st)
		}
	}
	return roster, nil
}

func (s *Store) FindByDateRange(_ context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	return s.collect(func(a models.Appointment) bool {
		return a.ClinicID == clinicID && !a.ScheduledStart.After(end) && !a.End().Before(start)
	}), nil
}

func (s *Store) FindByID(_ context.Context, clinicID, id string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return nil, scheduling.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *Store) FindByContact(_ context.Context, clinicID, contactID string) ([]models.Appointment, error) {
	return s.collect(func(a models.Appointment) bool {
		return a.ClinicID == clinicID && a.ContactID == contactID
	}), nil
}

func (s *Store) FindAll(_ context.Context, clinicID string, f scheduling.AppointmentFilters) ([]models.Appointment, error) {
	return s.collect(matchFilters(clinicID, f)), nil
}

func (s *Store) FindAllPaginated(_ context.Context, clinicID string, f scheduling.AppointmentFilters, limit, offset int) ([]models.Appointment, int64, error) {
	all := s.collect(matchFilters(clinicID, f))
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Appointment{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *Store) Create(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.ScheduledStart = a.ScheduledStart.UTC()
	a.ScheduledEnd = a.End()
	if a.Status == "" {
		a.Status = models.StatusScheduled
	}
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) Update(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.appointments[a.ID]
	if !ok || existing.ClinicID != a.ClinicID {
		return scheduling.ErrAppointmentNotFound
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = s.now()
	a.ScheduledStart = a.ScheduledStart.UTC()
	a.ScheduledEnd = a.End()
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, clinicID, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return nil, nil
	}
	a.Status = status
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	return &a, nil
}

func (s *Store) Delete(_ context.Context, clinicID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return false, nil
	}
	delete(s.appointments, id)
	return true, nil
}

func (s *Store) ReassignProfessional(_ context.Context, clinicID string, ids []string, professionalID, professionalName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := s.appointments[id]
		if !ok || a.ClinicID != clinicID {
			continue
		}
		a.ProfessionalID = professionalID
		a.ProfessionalName = professionalName
		a.UpdatedAt = s.now()
		s.appointments[id] = a
		n++
	}
	return n, nil
}

// collect returns matching appointments ordered by start, then ID.
func (s *Store) collect(match func(models.Appointment) bool) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Appointment{}
	for _, a := range s.appointments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledStart.Equal(out[j].ScheduledStart) {
			return out[i].ScheduledStart.Before(out[j].ScheduledStart)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func matchFilters(clinicID string, f scheduling.AppointmentFilters) func(models.Appointment) bool {
	return func(a models.Appointment) bool {
		if a.ClinicID != clinicID {
			return false
		}
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		if f.ContactID != "" && a.ContactID != f.ContactID {
			return false
		}
		if f.ProfessionalID != "" && a.ProfessionalID != f.ProfessionalID {
			return false
		}
		if f.From != nil && a.ScheduledStart.Before(*f.From) {
			return false
		}
		if f.To != nil && a.ScheduledStart.After(*f.To) {
			return false
		}
		return true
	}
}
