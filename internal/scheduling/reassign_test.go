package scheduling_test

import (
	"context"
	"errors"
	"testing"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
)

func TestReassign_NoActiveProfessionals(t *testing.T) {
	f := newFixture(t, scheduling.Options{})
	f.book(t, f.alice, at(10, 0), 60, models.StatusScheduled)
	f.store.SetStaffActive(f.alice.ID, false)
	f.store.SetStaffActive(f.bob.ID, false)

	_, err := f.svc.ReassignOrphanedAppointments(context.Background(), f.clinic.ID, scheduling.ReassignOptions{})
	if !errors.Is(err, scheduling.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestReassign_MovesOrphansToFirstActive(t *testing.T) {
	f := newFixture(t, scheduling.Options{})
	departed := f.store.AddStaff(models.Staff{ClinicID: f.clinic.ID, Name: "Dr. Dave", IsProfessional: true, Active: true})
	orphan1 := f.book(t, departed, at(9, 0), 60, models.StatusScheduled)
	orphan2 := f.book(t, departed, at(14, 0), 30, models.StatusCancelled)
	kept := f.book(t, f.bob, at(11, 0), 60, models.StatusScheduled)
	f.store.SetStaffActive(departed.ID, false)

	ctx := context.Background()
	res, err := f.svc.ReassignOrphanedAppointments(ctx, f.clinic.ID, scheduling.ReassignOptions{})
	if err != nil {
		t.Fatalf("ReassignOrphanedAppointments: %v", err)
	}
	if res.UpdatedCount != 2 {
		t.Fatalf("updatedCount = %d, want 2", res.UpdatedCount)
	}
	if res.TargetProfessionalID != f.alice.ID {
		t.Errorf("target = %s, want first active professional %s", res.TargetProfessionalID, f.alice.ID)
	}
	if res.Message != "Reassigned 2 appointment(s) to Dr. Alice" {
		t.Errorf("message = %q", res.Message)
	}

	for _, id := range []string{orphan1.ID, orphan2.ID} {
		a, err := f.store.FindByID(ctx, f.clinic.ID, id)
		if err != nil {
			t.Fatal(err)
		}
		if a.ProfessionalID != f.alice.ID || a.ProfessionalName != "Dr. Alice" {
			t.Errorf("appointment %s owned by %s/%s", id, a.ProfessionalID, a.ProfessionalName)
		}
	}
	a, _ := f.store.FindByID(ctx, f.clinic.ID, kept.ID)
	if a.ProfessionalID != f.bob.ID {
		t.Errorf("active professional's appointment was reassigned")
	}
	if got := f.calendar.count(scheduling.ActionReassigned); got != 2 {
		t.Errorf("expected 2 calendar notifications, got %d", got)
	}

	again, err := f.svc.ReassignOrphanedAppointments(ctx, f.clinic.ID, scheduling.ReassignOptions{})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if again.UpdatedCount != 0 {
		t.Errorf("second call updatedCount = %d, want 0", again.UpdatedCount)
	}
}

func TestReassign_ExplicitTarget(t *testing.T) {
	f := newFixture(t, scheduling.Options{ReassignPolicy: scheduling.ReassignExplicit})
	departed := f.store.AddStaff(models.Staff{ClinicID: f.clinic.ID, Name: "Dr. Dave", IsProfessional: true})
	orphan := f.book(t, departed, at(9, 0), 60, models.StatusScheduled)
	ctx := context.Background()

	_, err := f.svc.ReassignOrphanedAppointments(ctx, f.clinic.ID, scheduling.ReassignOptions{})
	if !errors.Is(err, scheduling.ErrInvalidInput) {
		t.Fatalf("explicit policy without target: expected ErrInvalidInput, got %v", err)
	}

	_, err = f.svc.ReassignOrphanedAppointments(ctx, f.clinic.ID, scheduling.ReassignOptions{TargetProfessionalID: departed.ID})
	if !errors.Is(err, scheduling.ErrPreconditionFailed) {
		t.Fatalf("inactive target: expected ErrPreconditionFailed, got %v", err)
	}

	res, err := f.svc.ReassignOrphanedAppointments(ctx, f.clinic.ID, scheduling.ReassignOptions{TargetProfessionalID: f.bob.ID})
	if err != nil {
		t.Fatalf("ReassignOrphanedAppointments: %v", err)
	}
	if res.UpdatedCount != 1 || res.TargetProfessionalID != f.bob.ID {
		t.Fatalf("unexpected result %+v", res)
	}
	a, _ := f.store.FindByID(ctx, f.clinic.ID, orphan.ID)
	if a.ProfessionalID != f.bob.ID {
		t.Errorf("orphan owned by %s, want bob", a.ProfessionalID)
	}
}

func TestReassign_NothingToDo(t *testing.T) {
	f := newFixture(t, scheduling.Options{ReassignPolicy: scheduling.ReassignExplicit})
	f.book(t, f.alice, at(9, 0), 60, models.StatusScheduled)

	res, err := f.svc.ReassignOrphanedAppointments(context.Background(), f.clinic.ID, scheduling.ReassignOptions{})
	if err != nil {
		t.Fatalf("ReassignOrphanedAppointments: %v", err)
	}
	if res.UpdatedCount != 0 || res.TargetProfessionalID != "" {
		t.Errorf("unexpected result %+v", res)
	}
}
