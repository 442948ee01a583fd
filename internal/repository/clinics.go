package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
)

// ClinicRepository loads per-clinic time settings.
type ClinicRepository struct {
	db *gorm.DB
}

func NewClinicRepository(db *gorm.DB) *ClinicRepository {
	return &ClinicRepository{db: db}
}

func (r *ClinicRepository) GetClinic(ctx context.Context, clinicID string) (*models.Clinic, error) {
	var clinic models.Clinic
	err := conn(ctx, r.db).Where("id = ?", clinicID).First(&clinic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, scheduling.ErrClinicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

// CachedClinicRepository keeps recently read clinic settings for ttl.
// Misses are not cached, so a newly created clinic is visible at once.
type CachedClinicRepository struct {
	next  scheduling.ClinicRepository
	cache *expirable.LRU[string, models.Clinic]
}

func NewCachedClinicRepository(next scheduling.ClinicRepository, size int, ttl time.Duration) *CachedClinicRepository {
	return &CachedClinicRepository{
		next:  next,
		cache: expirable.NewLRU[string, models.Clinic](size, nil, ttl),
	}
}

func (r *CachedClinicRepository) GetClinic(ctx context.Context, clinicID string) (*models.Clinic, error) {
	if c, ok := r.cache.Get(clinicID); ok {
		return &c, nil
	}
	c, err := r.next.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	r.cache.Add(clinicID, *c)
	return c, nil
}

// Invalidate drops a clinic from the cache after its settings change.
func (r *CachedClinicRepository) Invalidate(clinicID string) {
	r.cache.Remove(clinicID)
}
