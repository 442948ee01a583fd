package scheduling_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/repository/memory"
	"clinic-scheduling-server/internal/scheduling"
)

const testDay = "2030-03-04"

// testNow is 07:00 UTC on testDay, before the default workday opens.
var testNow = time.Date(2030, 3, 4, 7, 0, 0, 0, time.UTC)

type recordingCalendar struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (r *recordingCalendar) AppointmentChanged(_ context.Context, action string, _ *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return r.err
}

func (r *recordingCalendar) count(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a == action {
			n++
		}
	}
	return n
}

type fixture struct {
	store    *memory.Store
	svc      *scheduling.Service
	calendar *recordingCalendar
	clinic   models.Clinic
	alice    models.Staff
	bob      models.Staff
}

func newFixture(t *testing.T, opts scheduling.Options) *fixture {
	t.Helper()
	store := memory.NewStore()
	clinic := store.AddClinic(models.Clinic{
		Name:               "Downtown Clinic",
		Timezone:           "UTC",
		WorkdayStart:       "08:00",
		WorkdayEnd:         "18:00",
		DefaultSlotMinutes: 60,
	})
	alice := store.AddStaff(models.Staff{
		ClinicID: clinic.ID, Name: "Dr. Alice", Role: models.RoleProfessional,
		Specialty: "cardiology", IsProfessional: true, Active: true,
		BaseModel: models.BaseModel{CreatedAt: testNow.Add(-48 * time.Hour)},
	})
	bob := store.AddStaff(models.Staff{
		ClinicID: clinic.ID, Name: "Dr. Bob", Role: models.RoleProfessional,
		Specialty: "dermatology", IsProfessional: true, Active: true,
		BaseModel: models.BaseModel{CreatedAt: testNow.Add(-24 * time.Hour)},
	})

	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	calendar := &recordingCalendar{}
	svc := scheduling.NewService(store, store, store, memory.NewGuard(), calendar, zap.NewNop(), opts)
	return &fixture{store: store, svc: svc, calendar: calendar, clinic: clinic, alice: alice, bob: bob}
}

// book stores an appointment directly, bypassing the engine's checks.
func (f *fixture) book(t *testing.T, professional models.Staff, start time.Time, minutes int, status models.AppointmentStatus) models.Appointment {
	t.Helper()
	a := &models.Appointment{
		ClinicID:         f.clinic.ID,
		ContactID:        "6f1c2a8e-8a43-4f0e-9d55-0d1f0c1a2b3c",
		ContactName:      "Carol",
		ProfessionalID:   professional.ID,
		ProfessionalName: professional.Name,
		ScheduledStart:   start,
		DurationMinutes:  minutes,
		Status:           status,
	}
	if err := f.store.Create(context.Background(), a); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return *a
}

// at returns hh:mm UTC on testDay.
func at(hh, mm int) time.Time {
	return time.Date(2030, 3, 4, hh, mm, 0, 0, time.UTC)
}
