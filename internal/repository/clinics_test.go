package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/repository/memory"
	"clinic-scheduling-server/internal/scheduling"
)

type countingClinics struct {
	scheduling.ClinicRepository
	calls int
}

func (c *countingClinics) GetClinic(ctx context.Context, clinicID string) (*models.Clinic, error) {
	c.calls++
	return c.ClinicRepository.GetClinic(ctx, clinicID)
}

func TestCachedClinicRepository(t *testing.T) {
	store := memory.NewStore()
	clinic := store.AddClinic(models.Clinic{Name: "Downtown", Timezone: "Europe/Lisbon"})
	backend := &countingClinics{ClinicRepository: store}
	cached := NewCachedClinicRepository(backend, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cached.GetClinic(ctx, clinic.ID)
		if err != nil {
			t.Fatalf("GetClinic: %v", err)
		}
		if got.Timezone != "Europe/Lisbon" {
			t.Errorf("timezone = %q", got.Timezone)
		}
	}
	if backend.calls != 1 {
		t.Errorf("expected one backend read, got %d", backend.calls)
	}

	cached.Invalidate(clinic.ID)
	if _, err := cached.GetClinic(ctx, clinic.ID); err != nil {
		t.Fatal(err)
	}
	if backend.calls != 2 {
		t.Errorf("expected a backend read after invalidation, got %d", backend.calls)
	}
}

func TestCachedClinicRepository_MissesAreNotCached(t *testing.T) {
	store := memory.NewStore()
	backend := &countingClinics{ClinicRepository: store}
	cached := NewCachedClinicRepository(backend, 8, time.Minute)
	ctx := context.Background()

	if _, err := cached.GetClinic(ctx, "late"); !errors.Is(err, scheduling.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	store.AddClinic(models.Clinic{BaseModel: models.BaseModel{ID: "late"}, Name: "Late"})
	got, err := cached.GetClinic(ctx, "late")
	if err != nil {
		t.Fatalf("newly added clinic not visible: %v", err)
	}
	if got.Name != "Late" {
		t.Errorf("name = %q", got.Name)
	}
}
